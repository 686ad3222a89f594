package project

import (
	"slices"
	"time"

	projectDatamodel "github.com/frahmantamala/revolv-ledger/internal/core/datamodel/project"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDrafted   Status = projectDatamodel.StatusDrafted
	StatusProposed  Status = projectDatamodel.StatusProposed
	StatusActive    Status = projectDatamodel.StatusActive
	StatusCompleted Status = projectDatamodel.StatusCompleted
)

// transitions maps each status to the statuses it may move to.
var transitions = map[Status][]Status{
	StatusDrafted:   {StatusProposed},
	StatusProposed:  {StatusActive, StatusDrafted},
	StatusActive:    {StatusCompleted, StatusProposed},
	StatusCompleted: {StatusActive},
}

type Project struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	FundingGoal decimal.Decimal `json:"funding_goal"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func NewProject(title string, fundingGoal decimal.Decimal) *Project {
	now := time.Now()
	return &Project{
		Title:       title,
		FundingGoal: fundingGoal,
		Status:      StatusDrafted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (p *Project) IsCompleted() bool {
	return p.Status == StatusCompleted
}

// CanTransitionTo reports whether the lifecycle allows moving p to next.
func (p *Project) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[p.Status], next)
}

func (p *Project) TransitionTo(next Status) {
	p.Status = next
	p.UpdatedAt = time.Now()
}

func (p *Project) ToResponse() ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		FundingGoal: p.FundingGoal.StringFixed(2),
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToDataModel(p *Project) *projectDatamodel.Project {
	return &projectDatamodel.Project{
		ID:          p.ID,
		Title:       p.Title,
		FundingGoal: p.FundingGoal,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromDataModel(p *projectDatamodel.Project) *Project {
	return &Project{
		ID:          p.ID,
		Title:       p.Title,
		FundingGoal: p.FundingGoal,
		Status:      Status(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
