package project

import (
	"context"
	"encoding/json"
	"net/http"

	errors "github.com/frahmantamala/revolv-ledger/internal"
	"github.com/frahmantamala/revolv-ledger/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateProjectDTO) (*Project, error)
	GetByID(ctx context.Context, id int64) (*Project, error)
	List(ctx context.Context, status *Status) ([]*Project, error)
	Propose(ctx context.Context, id int64) (*Project, error)
	Deny(ctx context.Context, id int64) (*Project, error)
	Approve(ctx context.Context, id int64) (*Project, error)
	Unapprove(ctx context.Context, id int64) (*Project, error)
	Complete(ctx context.Context, id int64) (*Project, error)
	MarkIncomplete(ctx context.Context, id int64) (*Project, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var dto CreateProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Warn("CreateProject: invalid request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	p, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p.ToResponse())
}

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	var status *Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := ParseStatus(raw)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		status = &parsed
	}

	projects, err := h.Service.List(r.Context(), status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	out := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, ProjectsResponse{Projects: out})
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathInt64(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	p, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p.ToResponse())
}

func (h *Handler) ProposeProject(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.Service.Propose)
}

func (h *Handler) DenyProject(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.Service.Deny)
}

func (h *Handler) ApproveProject(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.Service.Approve)
}

func (h *Handler) UnapproveProject(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.Service.Unapprove)
}

func (h *Handler) CompleteProject(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.Service.Complete)
}

func (h *Handler) MarkProjectIncomplete(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.Service.MarkIncomplete)
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request, change func(context.Context, int64) (*Project, error)) {
	id, appErr := h.PathInt64(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	p, err := change(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p.ToResponse())
}
