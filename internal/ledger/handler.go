package ledger

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	errors "github.com/frahmantamala/revolv-ledger/internal"
	"github.com/frahmantamala/revolv-ledger/internal/auth"
	"github.com/frahmantamala/revolv-ledger/internal/transport"
	"github.com/frahmantamala/revolv-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

type ServiceAPI interface {
	CreateAdminRepayment(ctx context.Context, adminID, projectID int64, amount decimal.Decimal) (*RepaymentResult, error)
	DeleteAdminRepayment(ctx context.Context, id int64) error
	AdminRepayments(ctx context.Context, projectID *int64) ([]*AdminRepayment, error)
	AdminRepayment(ctx context.Context, id int64) (*RepaymentResult, error)

	CreateAdminReinvestment(ctx context.Context, adminID, projectID int64, amount decimal.Decimal) (*ReinvestmentResult, error)
	DeleteAdminReinvestment(ctx context.Context, id int64) error
	AdminReinvestments(ctx context.Context, projectID *int64) ([]*AdminReinvestment, error)
	AdminReinvestment(ctx context.Context, id int64) (*ReinvestmentResult, error)

	RecordPayment(ctx context.Context, dto RecordPaymentDTO) (*Payment, error)
	DeletePayment(ctx context.Context, id int64) error
	GetPayment(ctx context.Context, id int64) (*Payment, error)

	ReinvestPool(ctx context.Context, userID int64) (decimal.Decimal, error)
	ReinvestPools(ctx context.Context) (map[int64]decimal.Decimal, error)
	PaymentsOf(ctx context.Context, userID int64) ([]*Payment, error)
	DonationsOf(ctx context.Context, userID int64, projectID *int64, organicOnly bool) ([]*Payment, error)
	ReinvestmentsOf(ctx context.Context, userID int64, projectID *int64) ([]*Payment, error)
	RepaymentsOf(ctx context.Context, userID int64, projectID *int64) ([]*Repayment, error)
	DistinctOrganicDonorCount(ctx context.Context) (int64, error)
	ProjectTotals(ctx context.Context, projectID int64) (*ProjectTotals, error)
	Proportion(ctx context.Context, userID, projectID int64) (decimal.Decimal, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.Logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return false
	}
	return true
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleError(w, errors.ErrInvalidToken)
		return nil, false
	}
	return user, true
}

// selfOrAdmin lets users read their own ledger; admins read anyone's.
func (h *Handler) selfOrAdmin(w http.ResponseWriter, r *http.Request) (int64, bool) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return 0, false
	}
	userID, appErr := h.PathInt64(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return 0, false
	}
	if userID != user.ID && !user.IsAdmin() {
		h.HandleError(w, errors.ErrInsufficientAccess)
		return 0, false
	}
	return userID, true
}

func (h *Handler) CreateAdminRepayment(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var dto CreateAdminRepaymentDTO
	if !h.decode(w, r, &dto) {
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.CreateAdminRepayment(r.Context(), admin.ID, dto.ProjectID, dto.Amount)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, result.ToResponse())
}

func (h *Handler) ListAdminRepayments(w http.ResponseWriter, r *http.Request) {
	projectID, appErr := h.QueryInt64(r, "project_id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	owners, err := h.Service.AdminRepayments(r.Context(), projectID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	out := make([]AdminRepaymentResponse, 0, len(owners))
	for _, owner := range owners {
		out = append(out, (&RepaymentResult{AdminRepayment: owner}).ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"admin_repayments": out})
}

func (h *Handler) GetAdminRepayment(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathInt64(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	result, err := h.Service.AdminRepayment(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result.ToResponse())
}

func (h *Handler) DeleteAdminRepayment(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathInt64(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	if err := h.Service.DeleteAdminRepayment(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateAdminReinvestment(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var dto CreateAdminReinvestmentDTO
	if !h.decode(w, r, &dto) {
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.CreateAdminReinvestment(r.Context(), admin.ID, dto.ProjectID, dto.Amount)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, result.ToResponse())
}

func (h *Handler) ListAdminReinvestments(w http.ResponseWriter, r *http.Request) {
	projectID, appErr := h.QueryInt64(r, "project_id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	owners, err := h.Service.AdminReinvestments(r.Context(), projectID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	out := make([]AdminReinvestmentResponse, 0, len(owners))
	for _, owner := range owners {
		out = append(out, (&ReinvestmentResult{AdminReinvestment: owner}).ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"admin_reinvestments": out})
}

func (h *Handler) GetAdminReinvestment(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathInt64(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	result, err := h.Service.AdminReinvestment(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result.ToResponse())
}

func (h *Handler) DeleteAdminReinvestment(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathInt64(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	if err := h.Service.DeleteAdminReinvestment(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordPayment stores a payment entered by the caller. Only admins may enter
// a payment for another payer, and such payments are not organic.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var dto RecordPaymentDTO
	if !h.decode(w, r, &dto) {
		return
	}
	if dto.PayerID == 0 {
		dto.PayerID = user.ID
	}
	if dto.PayerID != user.ID && !user.IsAdmin() {
		h.HandleError(w, errors.ErrInsufficientAccess)
		return
	}
	dto.EntrantID = user.ID

	payment, err := h.Service.RecordPayment(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, ToPaymentResponse(payment))
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, appErr := h.PathInt64(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	payment, err := h.Service.GetPayment(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if payment.PayerID != user.ID && !user.IsAdmin() {
		h.HandleError(w, errors.ErrPaymentNotFound)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToPaymentResponse(payment))
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathInt64(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	if err := h.Service.DeletePayment(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UserPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.selfOrAdmin(w, r)
	if !ok {
		return
	}
	payments, err := h.Service.PaymentsOf(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"payments": ToPaymentResponses(payments)})
}

// UserDonations honours ?project_id= and ?organic=false; donations are
// organic-only unless asked otherwise.
func (h *Handler) UserDonations(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.selfOrAdmin(w, r)
	if !ok {
		return
	}
	projectID, appErr := h.QueryInt64(r, "project_id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	organicOnly := true
	if raw := r.URL.Query().Get("organic"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			h.HandleError(w, errors.NewValidationFieldError("organic", "organic must be true or false", errors.ErrCodeValidationFailed))
			return
		}
		organicOnly = parsed
	}

	payments, err := h.Service.DonationsOf(r.Context(), userID, projectID, organicOnly)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"donations": ToPaymentResponses(payments)})
}

func (h *Handler) UserReinvestments(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.selfOrAdmin(w, r)
	if !ok {
		return
	}
	projectID, appErr := h.QueryInt64(r, "project_id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	payments, err := h.Service.ReinvestmentsOf(r.Context(), userID, projectID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"reinvestments": ToPaymentResponses(payments)})
}

func (h *Handler) UserRepayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.selfOrAdmin(w, r)
	if !ok {
		return
	}
	projectID, appErr := h.QueryInt64(r, "project_id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	repayments, err := h.Service.RepaymentsOf(r.Context(), userID, projectID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"repayments": ToRepaymentResponses(repayments)})
}

func (h *Handler) UserPool(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.selfOrAdmin(w, r)
	if !ok {
		return
	}
	pool, err := h.Service.ReinvestPool(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PoolResponse{UserID: userID, Pool: pool.StringFixed(Scale)})
}

func (h *Handler) ListPools(w http.ResponseWriter, r *http.Request) {
	pools, err := h.Service.ReinvestPools(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	out := make([]PoolResponse, 0, len(pools))
	for _, userID := range SortedUserIDs(pools) {
		out = append(out, PoolResponse{UserID: userID, Pool: pools[userID].StringFixed(Scale)})
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"pools": out})
}

func (h *Handler) ProjectTotals(w http.ResponseWriter, r *http.Request) {
	projectID, appErr := h.PathInt64(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	totals, err := h.Service.ProjectTotals(r.Context(), projectID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, totals.ToResponse())
}

func (h *Handler) ProjectProportion(w http.ResponseWriter, r *http.Request) {
	projectID, appErr := h.PathInt64(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	userID, appErr := h.PathInt64(r, "userID")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	prop, err := h.Service.Proportion(r.Context(), userID, projectID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ProportionResponse{
		UserID:     userID,
		ProjectID:  projectID,
		Proportion: prop.Round(6).String(),
	})
}

func (h *Handler) DonorCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.DistinctOrganicDonorCount(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DonorCountResponse{Count: n})
}
