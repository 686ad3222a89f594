package ledger

import (
	"context"

	errors "github.com/frahmantamala/revolv-ledger/internal"
	"github.com/frahmantamala/revolv-ledger/internal/core/common/validation"
	"github.com/frahmantamala/revolv-ledger/internal/core/events"
	"github.com/shopspring/decimal"
)

// CreateAdminRepayment records money a completed project paid back and
// credits it to the project's organic donors in proportion to what each of
// them gave. The admin repayment and its repayments commit together or not
// at all. A project without organic donors keeps the admin repayment with no
// repayments.
func (s *Service) CreateAdminRepayment(ctx context.Context, adminID, projectID int64, amount decimal.Decimal) (*RepaymentResult, error) {
	ctx, cancel := errors.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	if appErr := validation.ValidateAmount("amount", amount); appErr != nil {
		return nil, appErr
	}
	if err := s.requireCompleted(ctx, projectID); err != nil {
		s.logger.Warn("admin repayment refused",
			"project_id", projectID,
			"admin_id", adminID,
			"error", err)
		return nil, err
	}

	// the project may have been marked incomplete while we waited for the lock
	recheck := func(ctx context.Context) error {
		return s.requireCompleted(ctx, projectID)
	}

	result := &RepaymentResult{}
	err := s.withPoolLockAfter(ctx, recheck, func(tx RepositoryAPI) error {
		owner := &AdminRepayment{
			Amount:    amount,
			AdminID:   adminID,
			ProjectID: projectID,
		}
		if err := tx.CreateAdminRepayment(ctx, owner); err != nil {
			return err
		}
		result.AdminRepayment = owner

		donations, err := tx.ListPayments(ctx, PaymentFilter{ProjectID: &projectID, OrganicOnly: true})
		if err != nil {
			return err
		}
		contributions := ContributionsByPayer(donations)
		shares, err := Allocate(amount, contributions)
		if err != nil {
			return err
		}
		if len(shares) == 0 {
			return nil
		}

		repayments := make([]*Repayment, 0, len(shares))
		for _, userID := range SortedUserIDs(shares) {
			repayments = append(repayments, &Repayment{
				UserID:           userID,
				ProjectID:        projectID,
				Amount:           shares[userID],
				AdminRepaymentID: owner.ID,
			})
		}
		if err := tx.CreateRepayments(ctx, repayments); err != nil {
			return err
		}
		result.Repayments = repayments

		return verifyRepayments(ctx, tx, owner)
	})
	if err != nil {
		observeFailed(kindRepayment)
		s.logger.Error("failed to create admin repayment",
			"project_id", projectID,
			"admin_id", adminID,
			"amount", amount.StringFixed(Scale),
			"error", err)
		return nil, err
	}

	observeCreated(kindRepayment, amount, len(result.Repayments))
	s.publish(ctx, events.NewDistributionEvent(events.EventTypeRepaymentCreated,
		result.AdminRepayment.ID, projectID, adminID, amount, len(result.Repayments)))
	s.logger.Info("admin repayment created",
		"admin_repayment_id", result.AdminRepayment.ID,
		"project_id", projectID,
		"amount", amount.StringFixed(Scale),
		"recipients", len(result.Repayments))

	return result, nil
}

// verifyRepayments re-reads the stored repayments of owner and checks they
// add up to its amount.
func verifyRepayments(ctx context.Context, tx RepositoryAPI, owner *AdminRepayment) error {
	stored, err := tx.ListRepayments(ctx, RepaymentFilter{AdminRepaymentID: &owner.ID})
	if err != nil {
		return err
	}
	if sum := SumRepayments(stored); !sum.Equal(owner.Amount) {
		return errors.NewInvariantViolation("admin repayment %d distributed %s of %s",
			owner.ID, sum.StringFixed(Scale), owner.Amount.StringFixed(Scale))
	}
	return nil
}

// DeleteAdminRepayment removes an admin repayment and every repayment it
// produced.
func (s *Service) DeleteAdminRepayment(ctx context.Context, id int64) error {
	ctx, cancel := errors.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	var (
		owner   *AdminRepayment
		removed int64
	)
	err := s.withPoolLock(ctx, func(tx RepositoryAPI) error {
		var err error
		owner, err = tx.GetAdminRepayment(ctx, id)
		if err != nil {
			return err
		}
		removed, err = tx.DeleteRepaymentsBySource(ctx, id)
		if err != nil {
			return err
		}
		return tx.DeleteAdminRepayment(ctx, id)
	})
	if err != nil {
		s.logger.Error("failed to delete admin repayment", "admin_repayment_id", id, "error", err)
		return err
	}

	observeDeleted(kindRepayment)
	s.publish(ctx, events.NewDistributionEvent(events.EventTypeRepaymentDeleted,
		owner.ID, owner.ProjectID, owner.AdminID, owner.Amount, int(removed)))
	s.logger.Info("admin repayment deleted",
		"admin_repayment_id", id,
		"repayments_removed", removed,
		"deleted_by", errors.UserIDFromContext(ctx))

	return nil
}

// AdminRepayments lists admin repayments, optionally for one project.
func (s *Service) AdminRepayments(ctx context.Context, projectID *int64) ([]*AdminRepayment, error) {
	return s.repo.ListAdminRepayments(ctx, projectID)
}

// AdminRepayment returns one admin repayment with its repayments.
func (s *Service) AdminRepayment(ctx context.Context, id int64) (*RepaymentResult, error) {
	owner, err := s.repo.GetAdminRepayment(ctx, id)
	if err != nil {
		return nil, err
	}
	repayments, err := s.repo.ListRepayments(ctx, RepaymentFilter{AdminRepaymentID: &id})
	if err != nil {
		return nil, err
	}
	return &RepaymentResult{AdminRepayment: owner, Repayments: repayments}, nil
}
