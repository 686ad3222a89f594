package ledger

import (
	"context"

	errors "github.com/frahmantamala/revolv-ledger/internal"
	ledgerDatamodel "github.com/frahmantamala/revolv-ledger/internal/core/datamodel/ledger"
	"github.com/shopspring/decimal"
)

// poolsFrom derives reinvestment pools from stored rows: repayments credited
// to a user minus reinvestment payments the user is the payer of. A nil
// userID covers every user. Sums run over exact decimals in Go.
func poolsFrom(ctx context.Context, repo RepositoryAPI, userID *int64) (map[int64]decimal.Decimal, error) {
	repayments, err := repo.ListRepayments(ctx, RepaymentFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	kind := ledgerDatamodel.KindReinvestment
	spent, err := repo.ListPayments(ctx, PaymentFilter{PayerID: userID, Kind: &kind})
	if err != nil {
		return nil, err
	}

	pools := make(map[int64]decimal.Decimal)
	for _, r := range repayments {
		pools[r.UserID] = pools[r.UserID].Add(r.Amount)
	}
	for _, p := range spent {
		pools[p.PayerID] = pools[p.PayerID].Sub(p.Amount)
	}
	return pools, nil
}

func positivePools(pools map[int64]decimal.Decimal) map[int64]decimal.Decimal {
	out := make(map[int64]decimal.Decimal, len(pools))
	for id, pool := range pools {
		if pool.IsPositive() {
			out[id] = pool
		}
	}
	return out
}

func sumValues(m map[int64]decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, v := range m {
		sum = sum.Add(v)
	}
	return sum
}

// ReinvestPool returns what userID has been repaid and not yet reinvested.
// It may be negative after an overdrawn reinvestment or a deleted repayment.
func (s *Service) ReinvestPool(ctx context.Context, userID int64) (decimal.Decimal, error) {
	pools, err := poolsFrom(ctx, s.repo, &userID)
	if err != nil {
		return decimal.Zero, err
	}
	return pools[userID], nil
}

// ReinvestPools returns the pool of every user that has been repaid or has
// reinvested.
func (s *Service) ReinvestPools(ctx context.Context) (map[int64]decimal.Decimal, error) {
	return poolsFrom(ctx, s.repo, nil)
}

func (s *Service) PaymentsOf(ctx context.Context, userID int64) ([]*Payment, error) {
	return s.repo.ListPayments(ctx, PaymentFilter{PayerID: &userID})
}

// DonationsOf returns the donations userID made. With organicOnly only
// payments the user entered personally count; otherwise every payment the
// user is the payer of that is not a reinvestment.
func (s *Service) DonationsOf(ctx context.Context, userID int64, projectID *int64, organicOnly bool) ([]*Payment, error) {
	filter := PaymentFilter{PayerID: &userID, ProjectID: projectID}
	if organicOnly {
		filter.OrganicOnly = true
	} else {
		kind := ledgerDatamodel.KindReinvestment
		filter.ExcludeKind = &kind
	}
	return s.repo.ListPayments(ctx, filter)
}

func (s *Service) ReinvestmentsOf(ctx context.Context, userID int64, projectID *int64) ([]*Payment, error) {
	return s.ReinvestmentPayments(ctx, &userID, projectID)
}

func (s *Service) RepaymentsOf(ctx context.Context, userID int64, projectID *int64) ([]*Repayment, error) {
	return s.repo.ListRepayments(ctx, RepaymentFilter{UserID: &userID, ProjectID: projectID})
}

// OrganicDonations lists organic payments, optionally narrowed to one
// project or one payer.
func (s *Service) OrganicDonations(ctx context.Context, projectID, userID *int64) ([]*Payment, error) {
	return s.repo.ListPayments(ctx, PaymentFilter{PayerID: userID, ProjectID: projectID, OrganicOnly: true})
}

func (s *Service) ReinvestmentPayments(ctx context.Context, userID, projectID *int64) ([]*Payment, error) {
	kind := ledgerDatamodel.KindReinvestment
	return s.repo.ListPayments(ctx, PaymentFilter{PayerID: userID, ProjectID: projectID, Kind: &kind})
}

// DistinctOrganicDonorCount counts users with at least one organic payment.
func (s *Service) DistinctOrganicDonorCount(ctx context.Context) (int64, error) {
	return s.repo.CountDistinctOrganicPayers(ctx)
}

// ProjectTotals aggregates what projectID received and repaid. Donated counts
// every payment to the project, reinvestments included.
func (s *Service) ProjectTotals(ctx context.Context, projectID int64) (*ProjectTotals, error) {
	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx, PaymentFilter{ProjectID: &projectID})
	if err != nil {
		return nil, err
	}
	repaid, err := s.repo.ListAdminRepayments(ctx, &projectID)
	if err != nil {
		return nil, err
	}

	totals := &ProjectTotals{
		ProjectID:          projectID,
		Donated:            decimal.Zero,
		DonatedOrganically: decimal.Zero,
		AdminOriginated:    decimal.Zero,
		Repaid:             decimal.Zero,
		Reinvested:         decimal.Zero,
	}
	for _, p := range payments {
		totals.Donated = totals.Donated.Add(p.Amount)
		switch {
		case IsOrganic(p):
			totals.DonatedOrganically = totals.DonatedOrganically.Add(p.Amount)
		case IsReinvestment(p):
			totals.Reinvested = totals.Reinvested.Add(p.Amount)
		}
		if IsAdminOriginated(p) {
			totals.AdminOriginated = totals.AdminOriginated.Add(p.Amount)
		}
	}
	for _, r := range repaid {
		totals.Repaid = totals.Repaid.Add(r.Amount)
	}
	return totals, nil
}

// Proportion returns the share of projectID's organic donations that came
// from userID, in [0, 1].
func (s *Service) Proportion(ctx context.Context, userID, projectID int64) (decimal.Decimal, error) {
	if err := s.requireProject(ctx, projectID); err != nil {
		return decimal.Zero, err
	}
	donations, err := s.OrganicDonations(ctx, &projectID, nil)
	if err != nil {
		return decimal.Zero, err
	}
	return Proportion(ContributionsByPayer(donations)[userID], SumPayments(donations))
}

// RecordPayment stores a payment made directly by its payer. A reinvestment
// payment spends the payer's own pool and is serialized with the
// distributors.
func (s *Service) RecordPayment(ctx context.Context, dto RecordPaymentDTO) (*Payment, error) {
	ctx, cancel := errors.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireProject(ctx, dto.ProjectID); err != nil {
		return nil, err
	}

	payment := dto.ToPayment()
	if !IsReinvestment(payment) {
		if err := s.repo.CreatePayment(ctx, payment); err != nil {
			s.logger.Error("failed to record payment", "payer_id", payment.PayerID, "error", err)
			return nil, err
		}
		s.logger.Info("payment recorded",
			"payment_id", payment.ID,
			"payer_id", payment.PayerID,
			"project_id", payment.ProjectID,
			"kind", payment.Kind,
			"amount", payment.Amount.StringFixed(Scale))
		return payment, nil
	}

	err := s.withPoolLock(ctx, func(tx RepositoryAPI) error {
		if s.cfg.RejectOverdrawnReinvestment {
			pools, err := poolsFrom(ctx, tx, &payment.PayerID)
			if err != nil {
				return err
			}
			if available := pools[payment.PayerID]; payment.Amount.GreaterThan(available) {
				return errors.ErrInsufficientPool.WithDetails(map[string]string{
					"requested": payment.Amount.StringFixed(Scale),
					"available": available.StringFixed(Scale),
				})
			}
		}
		return tx.CreatePayment(ctx, payment)
	})
	if err != nil {
		s.logger.Error("failed to record reinvestment payment", "payer_id", payment.PayerID, "error", err)
		return nil, err
	}
	s.logger.Info("reinvestment payment recorded",
		"payment_id", payment.ID,
		"payer_id", payment.PayerID,
		"project_id", payment.ProjectID,
		"amount", payment.Amount.StringFixed(Scale))
	return payment, nil
}

// DeletePayment removes a directly recorded payment. Payments produced by an
// admin reinvestment go away only with it.
func (s *Service) DeletePayment(ctx context.Context, id int64) error {
	ctx, cancel := errors.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	err := s.withPoolLock(ctx, func(tx RepositoryAPI) error {
		payment, err := tx.GetPayment(ctx, id)
		if err != nil {
			return err
		}
		if payment.AdminReinvestmentID != nil {
			return errors.ErrCannotDeleteDerived
		}
		return tx.DeletePayment(ctx, id)
	})
	if err != nil {
		s.logger.Warn("failed to delete payment", "payment_id", id, "error", err)
		return err
	}
	s.logger.Info("payment deleted", "payment_id", id, "deleted_by", errors.UserIDFromContext(ctx))
	return nil
}

func (s *Service) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	return s.repo.GetPayment(ctx, id)
}
