package postgres

import (
	"context"
	stdErrors "errors"
	"fmt"

	errors "github.com/frahmantamala/revolv-ledger/internal"
	ledgerDatamodel "github.com/frahmantamala/revolv-ledger/internal/core/datamodel/ledger"
	"github.com/frahmantamala/revolv-ledger/internal/ledger"
	"gorm.io/gorm"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) ledger.RepositoryAPI {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) WithTx(ctx context.Context, fn func(tx ledger.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LedgerRepository{db: tx})
	})
}

// LockScope takes a transaction-scoped advisory lock on Postgres. Other
// dialects rely on their own writer serialization.
func (r *LedgerRepository) LockScope(ctx context.Context, scope string) error {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", scope).Error; err != nil {
		return fmt.Errorf("lock scope %s: %w", scope, err)
	}
	return nil
}

func (r *LedgerRepository) CreatePayment(ctx context.Context, p *ledger.Payment) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (r *LedgerRepository) CreatePayments(ctx context.Context, ps []*ledger.Payment) error {
	if len(ps) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&ps).Error; err != nil {
		return fmt.Errorf("create payments: %w", err)
	}
	return nil
}

func (r *LedgerRepository) GetPayment(ctx context.Context, id int64) (*ledger.Payment, error) {
	var p ledger.Payment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment %d: %w", id, err)
	}
	return &p, nil
}

func (r *LedgerRepository) DeletePayment(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ledger.Payment{})
	if res.Error != nil {
		return fmt.Errorf("delete payment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.ErrPaymentNotFound
	}
	return nil
}

func (r *LedgerRepository) ListPayments(ctx context.Context, filter ledger.PaymentFilter) ([]*ledger.Payment, error) {
	q := r.db.WithContext(ctx).Model(&ledger.Payment{})
	if filter.PayerID != nil {
		q = q.Where("payer_id = ?", *filter.PayerID)
	}
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Kind != nil {
		q = q.Where("kind = ?", *filter.Kind)
	}
	if filter.ExcludeKind != nil {
		q = q.Where("kind <> ?", *filter.ExcludeKind)
	}
	if filter.AdminReinvestmentID != nil {
		q = q.Where("admin_reinvestment_id = ?", *filter.AdminReinvestmentID)
	}
	if filter.OrganicOnly {
		q = organic(q)
	}

	var payments []*ledger.Payment
	if err := q.Order("id ASC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func organic(q *gorm.DB) *gorm.DB {
	return q.Where("entrant_id = payer_id AND kind <> ?", ledgerDatamodel.KindReinvestment)
}

func (r *LedgerRepository) CountDistinctOrganicPayers(ctx context.Context) (int64, error) {
	var n int64
	err := organic(r.db.WithContext(ctx).Model(&ledger.Payment{})).
		Distinct("payer_id").
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count organic payers: %w", err)
	}
	return n, nil
}

func (r *LedgerRepository) CreateAdminRepayment(ctx context.Context, ar *ledger.AdminRepayment) error {
	if err := r.db.WithContext(ctx).Create(ar).Error; err != nil {
		return fmt.Errorf("create admin repayment: %w", err)
	}
	return nil
}

func (r *LedgerRepository) GetAdminRepayment(ctx context.Context, id int64) (*ledger.AdminRepayment, error) {
	var ar ledger.AdminRepayment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ar).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrAdminRepaymentNotFound
		}
		return nil, fmt.Errorf("get admin repayment %d: %w", id, err)
	}
	return &ar, nil
}

func (r *LedgerRepository) ListAdminRepayments(ctx context.Context, projectID *int64) ([]*ledger.AdminRepayment, error) {
	q := r.db.WithContext(ctx)
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	}
	var out []*ledger.AdminRepayment
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list admin repayments: %w", err)
	}
	return out, nil
}

func (r *LedgerRepository) DeleteAdminRepayment(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ledger.AdminRepayment{})
	if res.Error != nil {
		return fmt.Errorf("delete admin repayment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.ErrAdminRepaymentNotFound
	}
	return nil
}

func (r *LedgerRepository) CreateRepayments(ctx context.Context, rs []*ledger.Repayment) error {
	if len(rs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&rs).Error; err != nil {
		return fmt.Errorf("create repayments: %w", err)
	}
	return nil
}

func (r *LedgerRepository) ListRepayments(ctx context.Context, filter ledger.RepaymentFilter) ([]*ledger.Repayment, error) {
	q := r.db.WithContext(ctx).Model(&ledger.Repayment{})
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.AdminRepaymentID != nil {
		q = q.Where("admin_repayment_id = ?", *filter.AdminRepaymentID)
	}

	var out []*ledger.Repayment
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list repayments: %w", err)
	}
	return out, nil
}

func (r *LedgerRepository) DeleteRepaymentsBySource(ctx context.Context, adminRepaymentID int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("admin_repayment_id = ?", adminRepaymentID).Delete(&ledger.Repayment{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete repayments of %d: %w", adminRepaymentID, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *LedgerRepository) CreateAdminReinvestment(ctx context.Context, ar *ledger.AdminReinvestment) error {
	if err := r.db.WithContext(ctx).Create(ar).Error; err != nil {
		return fmt.Errorf("create admin reinvestment: %w", err)
	}
	return nil
}

func (r *LedgerRepository) GetAdminReinvestment(ctx context.Context, id int64) (*ledger.AdminReinvestment, error) {
	var ar ledger.AdminReinvestment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ar).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrAdminReinvestmentNotFound
		}
		return nil, fmt.Errorf("get admin reinvestment %d: %w", id, err)
	}
	return &ar, nil
}

func (r *LedgerRepository) ListAdminReinvestments(ctx context.Context, projectID *int64) ([]*ledger.AdminReinvestment, error) {
	q := r.db.WithContext(ctx)
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	}
	var out []*ledger.AdminReinvestment
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list admin reinvestments: %w", err)
	}
	return out, nil
}

func (r *LedgerRepository) DeleteAdminReinvestment(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ledger.AdminReinvestment{})
	if res.Error != nil {
		return fmt.Errorf("delete admin reinvestment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.ErrAdminReinvestmentNotFound
	}
	return nil
}

func (r *LedgerRepository) DeletePaymentsByReinvestment(ctx context.Context, adminReinvestmentID int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("admin_reinvestment_id = ?", adminReinvestmentID).Delete(&ledger.Payment{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete payments of reinvestment %d: %w", adminReinvestmentID, res.Error)
	}
	return res.RowsAffected, nil
}
