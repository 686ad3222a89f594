package project

import (
	"time"

	errors "github.com/frahmantamala/revolv-ledger/internal"
	"github.com/frahmantamala/revolv-ledger/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

type CreateProjectDTO struct {
	Title       string          `json:"title"`
	FundingGoal decimal.Decimal `json:"funding_goal"`
}

func (dto CreateProjectDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("title", dto.Title).Required().MaxLength(255)
	v.Field("funding_goal", dto.FundingGoal).PositiveAmount().MaxScale(validation.MoneyScale)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type ProjectResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	FundingGoal string    `json:"funding_goal"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

// ParseStatus accepts the two-letter status codes.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDrafted, StatusProposed, StatusActive, StatusCompleted:
		return Status(s), nil
	}
	return "", errors.NewValidationFieldError("status", "status must be one of DR, PR, AC, CO", errors.ErrCodeInvalidStatus)
}
