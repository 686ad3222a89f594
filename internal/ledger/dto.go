package ledger

import (
	"time"

	errors "github.com/frahmantamala/revolv-ledger/internal"
	"github.com/frahmantamala/revolv-ledger/internal/core/common/validation"
	ledgerDatamodel "github.com/frahmantamala/revolv-ledger/internal/core/datamodel/ledger"
	"github.com/shopspring/decimal"
)

// CreateAdminRepaymentDTO is the body of POST /admin/repayments. The admin
// is taken from the bearer token.
type CreateAdminRepaymentDTO struct {
	ProjectID int64           `json:"project_id"`
	Amount    decimal.Decimal `json:"amount"`
}

func (dto CreateAdminRepaymentDTO) Validate() error {
	return validateDistribution(dto.ProjectID, dto.Amount)
}

type CreateAdminReinvestmentDTO struct {
	ProjectID int64           `json:"project_id"`
	Amount    decimal.Decimal `json:"amount"`
}

func (dto CreateAdminReinvestmentDTO) Validate() error {
	return validateDistribution(dto.ProjectID, dto.Amount)
}

func validateDistribution(projectID int64, amount decimal.Decimal) error {
	v := validation.NewValidator()
	v.Field("project_id", projectID).PositiveID()
	v.Field("amount", amount).PositiveAmount().MaxScale(validation.MoneyScale)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// RecordPaymentDTO is a direct payment. EntrantID defaults to PayerID; a
// different entrant marks the payment as entered on the payer's behalf.
type RecordPaymentDTO struct {
	PayerID   int64           `json:"payer_id"`
	EntrantID int64           `json:"entrant_id,omitempty"`
	ProjectID int64           `json:"project_id"`
	Amount    decimal.Decimal `json:"amount"`
	Kind      string          `json:"kind"`
}

func (dto RecordPaymentDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("payer_id", dto.PayerID).PositiveID()
	v.Field("entrant_id", dto.EntrantID).Custom(func(value interface{}) *errors.AppError {
		if id, _ := value.(int64); id < 0 {
			return errors.NewValidationFieldError("entrant_id", "entrant_id must be a positive id", errors.ErrCodeInvalidID)
		}
		return nil
	})
	v.Field("project_id", dto.ProjectID).PositiveID()
	v.Field("amount", dto.Amount).PositiveAmount().MaxScale(validation.MoneyScale)
	v.Field("kind", dto.Kind).Required().Custom(func(value interface{}) *errors.AppError {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		if _, ok := ledgerDatamodel.ParsePaymentKind(s); !ok {
			return errors.NewValidationFieldError("kind", "kind must be one of paypal, check, credit, reinvestment", errors.ErrCodeInvalidPaymentKind)
		}
		return nil
	})
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// ToPayment builds the row to insert. Call Validate first.
func (dto RecordPaymentDTO) ToPayment() *Payment {
	entrant := dto.EntrantID
	if entrant == 0 {
		entrant = dto.PayerID
	}
	kind, _ := ledgerDatamodel.ParsePaymentKind(dto.Kind)
	return &Payment{
		Amount:    dto.Amount,
		PayerID:   dto.PayerID,
		EntrantID: entrant,
		Kind:      kind,
		ProjectID: dto.ProjectID,
	}
}

// RepaymentResult is an admin repayment together with the repayments it
// produced.
type RepaymentResult struct {
	AdminRepayment *AdminRepayment
	Repayments     []*Repayment
}

type ReinvestmentResult struct {
	AdminReinvestment *AdminReinvestment
	Payments          []*Payment
}

// ProjectTotals aggregates the money that flowed through one project.
// AdminOriginated counts payments an admin entered on a payer's behalf or
// produced through an admin reinvestment.
type ProjectTotals struct {
	ProjectID          int64
	Donated            decimal.Decimal
	DonatedOrganically decimal.Decimal
	AdminOriginated    decimal.Decimal
	Repaid             decimal.Decimal
	Reinvested         decimal.Decimal
}

// Responses render amounts as fixed two-digit strings so clients never see
// float rounding.

type PaymentResponse struct {
	ID                  int64     `json:"id"`
	Amount              string    `json:"amount"`
	PayerID             int64     `json:"payer_id"`
	EntrantID           int64     `json:"entrant_id"`
	Kind                string    `json:"kind"`
	ProjectID           int64     `json:"project_id"`
	AdminReinvestmentID *int64    `json:"admin_reinvestment_id,omitempty"`
	Organic             bool      `json:"organic"`
	CreatedAt           time.Time `json:"created_at"`
}

type RepaymentResponse struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	ProjectID        int64     `json:"project_id"`
	Amount           string    `json:"amount"`
	AdminRepaymentID int64     `json:"admin_repayment_id"`
	CreatedAt        time.Time `json:"created_at"`
}

type AdminRepaymentResponse struct {
	ID         int64               `json:"id"`
	Amount     string              `json:"amount"`
	AdminID    int64               `json:"admin_id"`
	ProjectID  int64               `json:"project_id"`
	CreatedAt  time.Time           `json:"created_at"`
	Repayments []RepaymentResponse `json:"repayments"`
}

type AdminReinvestmentResponse struct {
	ID        int64             `json:"id"`
	Amount    string            `json:"amount"`
	AdminID   int64             `json:"admin_id"`
	ProjectID int64             `json:"project_id"`
	CreatedAt time.Time         `json:"created_at"`
	Payments  []PaymentResponse `json:"payments"`
}

type PoolResponse struct {
	UserID int64  `json:"user_id"`
	Pool   string `json:"reinvest_pool"`
}

type ProjectTotalsResponse struct {
	ProjectID          int64  `json:"project_id"`
	Donated            string `json:"amount_donated"`
	DonatedOrganically string `json:"amount_donated_organically"`
	AdminOriginated    string `json:"amount_admin_originated"`
	Repaid             string `json:"amount_repaid"`
	Reinvested         string `json:"amount_reinvested"`
}

type ProportionResponse struct {
	UserID     int64  `json:"user_id"`
	ProjectID  int64  `json:"project_id"`
	Proportion string `json:"proportion"`
}

type DonorCountResponse struct {
	Count int64 `json:"count"`
}

func ToPaymentResponse(p *Payment) PaymentResponse {
	return PaymentResponse{
		ID:                  p.ID,
		Amount:              p.Amount.StringFixed(Scale),
		PayerID:             p.PayerID,
		EntrantID:           p.EntrantID,
		Kind:                string(p.Kind),
		ProjectID:           p.ProjectID,
		AdminReinvestmentID: p.AdminReinvestmentID,
		Organic:             IsOrganic(p),
		CreatedAt:           p.CreatedAt,
	}
}

func ToPaymentResponses(ps []*Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, ToPaymentResponse(p))
	}
	return out
}

func ToRepaymentResponse(r *Repayment) RepaymentResponse {
	return RepaymentResponse{
		ID:               r.ID,
		UserID:           r.UserID,
		ProjectID:        r.ProjectID,
		Amount:           r.Amount.StringFixed(Scale),
		AdminRepaymentID: r.AdminRepaymentID,
		CreatedAt:        r.CreatedAt,
	}
}

func ToRepaymentResponses(rs []*Repayment) []RepaymentResponse {
	out := make([]RepaymentResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, ToRepaymentResponse(r))
	}
	return out
}

func (r *RepaymentResult) ToResponse() AdminRepaymentResponse {
	owner := r.AdminRepayment
	return AdminRepaymentResponse{
		ID:         owner.ID,
		Amount:     owner.Amount.StringFixed(Scale),
		AdminID:    owner.AdminID,
		ProjectID:  owner.ProjectID,
		CreatedAt:  owner.CreatedAt,
		Repayments: ToRepaymentResponses(r.Repayments),
	}
}

func (r *ReinvestmentResult) ToResponse() AdminReinvestmentResponse {
	owner := r.AdminReinvestment
	return AdminReinvestmentResponse{
		ID:        owner.ID,
		Amount:    owner.Amount.StringFixed(Scale),
		AdminID:   owner.AdminID,
		ProjectID: owner.ProjectID,
		CreatedAt: owner.CreatedAt,
		Payments:  ToPaymentResponses(r.Payments),
	}
}

func (t ProjectTotals) ToResponse() ProjectTotalsResponse {
	return ProjectTotalsResponse{
		ProjectID:          t.ProjectID,
		Donated:            t.Donated.StringFixed(Scale),
		DonatedOrganically: t.DonatedOrganically.StringFixed(Scale),
		AdminOriginated:    t.AdminOriginated.StringFixed(Scale),
		Repaid:             t.Repaid.StringFixed(Scale),
		Reinvested:         t.Reinvested.StringFixed(Scale),
	}
}
