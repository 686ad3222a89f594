package ledger

import (
	"context"

	errors "github.com/frahmantamala/revolv-ledger/internal"
	"github.com/frahmantamala/revolv-ledger/internal/core/common/validation"
	ledgerDatamodel "github.com/frahmantamala/revolv-ledger/internal/core/datamodel/ledger"
	"github.com/frahmantamala/revolv-ledger/internal/core/events"
	"github.com/shopspring/decimal"
)

// CreateAdminReinvestment moves amount from users' reinvestment pools into
// projectID. Every user with a positive pool is charged in proportion to
// their pool, through one reinvestment payment entered by the admin.
//
// By default the amount may exceed the summed pools, in which case pools go
// negative. With RejectOverdrawnReinvestment such a request fails with
// ErrInsufficientPool and nothing is written.
func (s *Service) CreateAdminReinvestment(ctx context.Context, adminID, projectID int64, amount decimal.Decimal) (*ReinvestmentResult, error) {
	ctx, cancel := errors.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	if appErr := validation.ValidateAmount("amount", amount); appErr != nil {
		return nil, appErr
	}
	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}

	result := &ReinvestmentResult{}
	err := s.withPoolLock(ctx, func(tx RepositoryAPI) error {
		pools, err := poolsFrom(ctx, tx, nil)
		if err != nil {
			return err
		}
		holders := positivePools(pools)
		available := sumValues(holders)
		if s.cfg.RejectOverdrawnReinvestment && amount.GreaterThan(available) {
			return errors.ErrInsufficientPool.WithDetails(map[string]string{
				"requested": amount.StringFixed(Scale),
				"available": available.StringFixed(Scale),
			})
		}

		owner := &AdminReinvestment{
			Amount:    amount,
			AdminID:   adminID,
			ProjectID: projectID,
		}
		if err := tx.CreateAdminReinvestment(ctx, owner); err != nil {
			return err
		}
		result.AdminReinvestment = owner

		shares, err := Allocate(amount, holders)
		if err != nil {
			return err
		}
		if len(shares) == 0 {
			return nil
		}

		payments := make([]*Payment, 0, len(shares))
		for _, userID := range SortedUserIDs(shares) {
			payments = append(payments, &Payment{
				Amount:              shares[userID],
				PayerID:             userID,
				EntrantID:           adminID,
				Kind:                ledgerDatamodel.KindReinvestment,
				ProjectID:           projectID,
				AdminReinvestmentID: &owner.ID,
			})
		}
		if err := tx.CreatePayments(ctx, payments); err != nil {
			return err
		}
		result.Payments = payments

		return verifyReinvestment(ctx, tx, owner, shares, !amount.GreaterThan(available))
	})
	if err != nil {
		observeFailed(kindReinvestment)
		s.logger.Error("failed to create admin reinvestment",
			"project_id", projectID,
			"admin_id", adminID,
			"amount", amount.StringFixed(Scale),
			"error", err)
		return nil, err
	}

	observeCreated(kindReinvestment, amount, len(result.Payments))
	s.publish(ctx, events.NewDistributionEvent(events.EventTypeReinvestmentCreated,
		result.AdminReinvestment.ID, projectID, adminID, amount, len(result.Payments)))
	s.logger.Info("admin reinvestment created",
		"admin_reinvestment_id", result.AdminReinvestment.ID,
		"project_id", projectID,
		"amount", amount.StringFixed(Scale),
		"recipients", len(result.Payments))

	return result, nil
}

// verifyReinvestment checks the stored payments of owner add up to its
// amount and, when the amount was covered by the pools, that no charged
// pool went negative.
func verifyReinvestment(ctx context.Context, tx RepositoryAPI, owner *AdminReinvestment, shares map[int64]decimal.Decimal, covered bool) error {
	stored, err := tx.ListPayments(ctx, PaymentFilter{AdminReinvestmentID: &owner.ID})
	if err != nil {
		return err
	}
	if sum := SumPayments(stored); !sum.Equal(owner.Amount) {
		return errors.NewInvariantViolation("admin reinvestment %d distributed %s of %s",
			owner.ID, sum.StringFixed(Scale), owner.Amount.StringFixed(Scale))
	}
	if !covered {
		return nil
	}

	pools, err := poolsFrom(ctx, tx, nil)
	if err != nil {
		return err
	}
	for userID := range shares {
		if pools[userID].IsNegative() {
			return errors.NewInvariantViolation("reinvestment pool of user %d fell to %s",
				userID, pools[userID].StringFixed(Scale))
		}
	}
	return nil
}

// DeleteAdminReinvestment removes an admin reinvestment and every payment it
// produced, which restores the charged pools.
func (s *Service) DeleteAdminReinvestment(ctx context.Context, id int64) error {
	ctx, cancel := errors.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	var (
		owner   *AdminReinvestment
		removed int64
	)
	err := s.withPoolLock(ctx, func(tx RepositoryAPI) error {
		var err error
		owner, err = tx.GetAdminReinvestment(ctx, id)
		if err != nil {
			return err
		}
		removed, err = tx.DeletePaymentsByReinvestment(ctx, id)
		if err != nil {
			return err
		}
		return tx.DeleteAdminReinvestment(ctx, id)
	})
	if err != nil {
		s.logger.Error("failed to delete admin reinvestment", "admin_reinvestment_id", id, "error", err)
		return err
	}

	observeDeleted(kindReinvestment)
	s.publish(ctx, events.NewDistributionEvent(events.EventTypeReinvestmentDeleted,
		owner.ID, owner.ProjectID, owner.AdminID, owner.Amount, int(removed)))
	s.logger.Info("admin reinvestment deleted",
		"admin_reinvestment_id", id,
		"payments_removed", removed,
		"deleted_by", errors.UserIDFromContext(ctx))

	return nil
}

func (s *Service) AdminReinvestments(ctx context.Context, projectID *int64) ([]*AdminReinvestment, error) {
	return s.repo.ListAdminReinvestments(ctx, projectID)
}

// AdminReinvestment returns one admin reinvestment with its payments.
func (s *Service) AdminReinvestment(ctx context.Context, id int64) (*ReinvestmentResult, error) {
	owner, err := s.repo.GetAdminReinvestment(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx, PaymentFilter{AdminReinvestmentID: &id})
	if err != nil {
		return nil, err
	}
	return &ReinvestmentResult{AdminReinvestment: owner, Payments: payments}, nil
}
