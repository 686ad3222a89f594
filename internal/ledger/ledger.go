// Package ledger attributes every dollar of a project to the users who funded
// it. It classifies payments, splits admin repayments across organic donors in
// proportion to what they gave, derives each user's reinvestment pool from the
// stored records and splits admin reinvestments across pool holders.
package ledger

import (
	"context"

	ledgerDatamodel "github.com/frahmantamala/revolv-ledger/internal/core/datamodel/ledger"
)

type (
	Payment           = ledgerDatamodel.Payment
	PaymentKind       = ledgerDatamodel.PaymentKind
	AdminRepayment    = ledgerDatamodel.AdminRepayment
	Repayment         = ledgerDatamodel.Repayment
	AdminReinvestment = ledgerDatamodel.AdminReinvestment
)

// poolScope serializes every operation that reads or changes reinvestment
// pools: distributions and their cascading deletes.
const poolScope = "ledger:reinvest-pool"

// PaymentFilter narrows ListPayments. Nil pointers do not filter.
type PaymentFilter struct {
	PayerID             *int64
	ProjectID           *int64
	Kind                *PaymentKind
	ExcludeKind         *PaymentKind
	AdminReinvestmentID *int64
	// OrganicOnly keeps payments the payer entered personally that are not
	// reinvestment credits.
	OrganicOnly bool
}

type RepaymentFilter struct {
	UserID           *int64
	ProjectID        *int64
	AdminRepaymentID *int64
}

// RepositoryAPI is the record store. Implementations must make WithTx
// all-or-nothing and keep uncommitted writes invisible to other callers.
type RepositoryAPI interface {
	WithTx(ctx context.Context, fn func(tx RepositoryAPI) error) error
	// LockScope blocks until the named scope is held by the current
	// transaction; the lock is released on commit or rollback.
	LockScope(ctx context.Context, scope string) error

	CreatePayment(ctx context.Context, p *Payment) error
	CreatePayments(ctx context.Context, ps []*Payment) error
	GetPayment(ctx context.Context, id int64) (*Payment, error)
	DeletePayment(ctx context.Context, id int64) error
	ListPayments(ctx context.Context, filter PaymentFilter) ([]*Payment, error)
	CountDistinctOrganicPayers(ctx context.Context) (int64, error)

	CreateAdminRepayment(ctx context.Context, r *AdminRepayment) error
	GetAdminRepayment(ctx context.Context, id int64) (*AdminRepayment, error)
	ListAdminRepayments(ctx context.Context, projectID *int64) ([]*AdminRepayment, error)
	DeleteAdminRepayment(ctx context.Context, id int64) error
	CreateRepayments(ctx context.Context, rs []*Repayment) error
	ListRepayments(ctx context.Context, filter RepaymentFilter) ([]*Repayment, error)
	DeleteRepaymentsBySource(ctx context.Context, adminRepaymentID int64) (int64, error)

	CreateAdminReinvestment(ctx context.Context, r *AdminReinvestment) error
	GetAdminReinvestment(ctx context.Context, id int64) (*AdminReinvestment, error)
	ListAdminReinvestments(ctx context.Context, projectID *int64) ([]*AdminReinvestment, error)
	DeleteAdminReinvestment(ctx context.Context, id int64) error
	DeletePaymentsByReinvestment(ctx context.Context, adminReinvestmentID int64) (int64, error)
}

// ProjectLookup is the part of the project store the ledger needs.
// IsCompleted returns internal.ErrProjectNotFound for unknown ids.
type ProjectLookup interface {
	IsCompleted(ctx context.Context, projectID int64) (bool, error)
	Exists(ctx context.Context, projectID int64) (bool, error)
}
