package ledger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	errors "github.com/frahmantamala/revolv-ledger/internal"
	"github.com/frahmantamala/revolv-ledger/internal/core/events"
)

type Config struct {
	// RejectOverdrawnReinvestment refuses reinvestments larger than the
	// available pool instead of letting pools go negative.
	RejectOverdrawnReinvestment bool
	OperationTimeout            time.Duration
}

// Service owns every ledger mutation and query.
type Service struct {
	repo      RepositoryAPI
	projects  ProjectLookup
	publisher events.Publisher
	logger    *slog.Logger
	cfg       Config

	// poolMu serializes pool-affecting work inside this process; LockScope
	// does the same across processes sharing a database.
	poolMu sync.Mutex
}

func NewService(repo RepositoryAPI, projects ProjectLookup, publisher events.Publisher, logger *slog.Logger, cfg Config) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		projects:  projects,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
	}
}

// withPoolLock runs fn in one transaction holding the reinvestment pool scope.
func (s *Service) withPoolLock(ctx context.Context, fn func(tx RepositoryAPI) error) error {
	return s.withPoolLockAfter(ctx, nil, fn)
}

// withPoolLockAfter is withPoolLock with a check that runs once the
// in-process lock is held and before the transaction opens.
func (s *Service) withPoolLockAfter(ctx context.Context, check func(context.Context) error, fn func(tx RepositoryAPI) error) error {
	s.poolMu.Lock()
	defer s.poolMu.Unlock()

	if check != nil {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return s.repo.WithTx(ctx, func(tx RepositoryAPI) error {
		if err := tx.LockScope(ctx, poolScope); err != nil {
			return err
		}
		return fn(tx)
	})
}

func (s *Service) requireProject(ctx context.Context, projectID int64) error {
	exists, err := s.projects.Exists(ctx, projectID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.ErrProjectNotFound
	}
	return nil
}

func (s *Service) requireCompleted(ctx context.Context, projectID int64) error {
	completed, err := s.projects.IsCompleted(ctx, projectID)
	if err != nil {
		return err
	}
	if !completed {
		return errors.ErrProjectNotComplete
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish ledger event",
			"event_type", event.EventType(),
			"error", err)
	}
}
