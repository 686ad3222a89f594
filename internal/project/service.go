package project

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/revolv-ledger/internal"
	projectDatamodel "github.com/frahmantamala/revolv-ledger/internal/core/datamodel/project"
)

type RepositoryAPI interface {
	Create(ctx context.Context, p *projectDatamodel.Project) error
	GetByID(ctx context.Context, id int64) (*projectDatamodel.Project, error)
	List(ctx context.Context, status *string) ([]*projectDatamodel.Project, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) Create(ctx context.Context, dto CreateProjectDTO) (*Project, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p := NewProject(dto.Title, dto.FundingGoal)
	data := ToDataModel(p)
	if err := s.repo.Create(ctx, data); err != nil {
		s.logger.Error("failed to create project", "error", err, "title", dto.Title)
		return nil, err
	}

	s.logger.Info("project created", "project_id", data.ID, "title", data.Title)
	return FromDataModel(data), nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Project, error) {
	data, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(data), nil
}

// List returns projects, optionally only those in status.
func (s *Service) List(ctx context.Context, status *Status) ([]*Project, error) {
	var filter *string
	if status != nil {
		str := string(*status)
		filter = &str
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list projects", "error", err)
		return nil, err
	}
	projects := make([]*Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, FromDataModel(row))
	}
	return projects, nil
}

func (s *Service) Propose(ctx context.Context, id int64) (*Project, error) {
	return s.transition(ctx, id, StatusDrafted, StatusProposed)
}

// Deny sends a proposed project back to drafted.
func (s *Service) Deny(ctx context.Context, id int64) (*Project, error) {
	return s.transition(ctx, id, StatusProposed, StatusDrafted)
}

func (s *Service) Approve(ctx context.Context, id int64) (*Project, error) {
	return s.transition(ctx, id, StatusProposed, StatusActive)
}

// Unapprove moves an active project back to proposed.
func (s *Service) Unapprove(ctx context.Context, id int64) (*Project, error) {
	return s.transition(ctx, id, StatusActive, StatusProposed)
}

// Complete marks the project as paid off, which is what allows admin
// repayments against it.
func (s *Service) Complete(ctx context.Context, id int64) (*Project, error) {
	return s.transition(ctx, id, StatusActive, StatusCompleted)
}

// MarkIncomplete moves a completed project back to active.
func (s *Service) MarkIncomplete(ctx context.Context, id int64) (*Project, error) {
	return s.transition(ctx, id, StatusCompleted, StatusActive)
}

// transition applies the from->next edge. A project in any other status,
// or an edge the lifecycle does not allow, yields ErrInvalidProjectStatus.
func (s *Service) transition(ctx context.Context, id int64, from, next Status) (*Project, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != from || !p.CanTransitionTo(next) {
		s.logger.Warn("project transition refused",
			"project_id", id,
			"from", p.Status,
			"to", next)
		return nil, errors.ErrInvalidProjectStatus
	}
	return s.apply(ctx, p, next)
}

func (s *Service) apply(ctx context.Context, p *Project, next Status) (*Project, error) {
	from := p.Status
	if err := s.repo.UpdateStatus(ctx, p.ID, string(next)); err != nil {
		s.logger.Error("failed to update project status", "error", err, "project_id", p.ID)
		return nil, err
	}
	p.TransitionTo(next)
	s.logger.Info("project status changed", "project_id", p.ID, "from", from, "to", next)
	return p, nil
}

// IsCompleted returns internal.ErrProjectNotFound for unknown ids.
func (s *Service) IsCompleted(ctx context.Context, id int64) (bool, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return p.IsCompleted(), nil
}

func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return true, nil
	}
	if appErr, ok := errors.IsAppError(err); ok && appErr.Code == errors.ErrCodeProjectNotFound {
		return false, nil
	}
	return false, err
}
