package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/emberlog/emberlog/internal/journal"
	"github.com/emberlog/emberlog/internal/observability"
)

const scanConcurrency = 4

// IntegrityScanner checks persisted owner journals against the
// collection invariants: capacity, name and date uniqueness among
// active members, and day references pointing at known emotions.
// Violations are logged, never repaired.
type IntegrityScanner struct {
	storage journal.Storage
	logger  *slog.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewIntegrityScanner constructs a scanner over journal storage.
func NewIntegrityScanner(storage journal.Storage, logger *slog.Logger, metrics *observability.Metrics) *IntegrityScanner {
	return &IntegrityScanner{
		storage: storage,
		logger:  logger,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Handle processes TaskJournalIntegrityScan tasks.
func (s *IntegrityScanner) Handle(ctx context.Context, t *asynq.Task) error {
	var payload IntegrityScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	violations, err := s.Scan(ctx, payload.OwnerIDs)
	if err != nil {
		s.metrics.RecordJob(TaskJournalIntegrityScan, "error")
		return err
	}
	if violations > 0 {
		s.metrics.RecordJob(TaskJournalIntegrityScan, "violations")
	} else {
		s.metrics.RecordJob(TaskJournalIntegrityScan, "ok")
	}
	return nil
}

// Scan validates the given owners (or all active owners when empty) and
// returns the number of owners with at least one violation.
func (s *IntegrityScanner) Scan(ctx context.Context, ownerIDs []string) (int, error) {
	if len(ownerIDs) == 0 {
		ids, err := s.storage.ListOwnerIDs(ctx)
		if err != nil {
			return 0, err
		}
		ownerIDs = ids
	}

	now := s.now()
	var flagged int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)
	results := make(chan string, len(ownerIDs))
	for _, id := range ownerIDs {
		id := id
		g.Go(func() error {
			owner, err := s.storage.LoadOwner(ctx, id)
			if err != nil {
				if errors.Is(err, journal.ErrNotFound) {
					return nil
				}
				return err
			}
			if owner.Deleted {
				return nil
			}
			if err := owner.Validate(now); err != nil {
				var verrs journal.ValidationErrors
				if errors.As(err, &verrs) {
					s.logger.Warn("journal integrity violation",
						slog.String("owner_id", id),
						slog.Any("violations", verrs.Messages()),
					)
				} else {
					s.logger.Warn("journal integrity violation",
						slog.String("owner_id", id),
						slog.Any("error", err),
					)
				}
				results <- id
			}
			return nil
		})
	}
	err := g.Wait()
	close(results)
	for range results {
		flagged++
	}

	s.logger.Info("journal integrity scan finished",
		slog.Int("owners", len(ownerIDs)),
		slog.Int64("flagged", flagged),
	)
	if err != nil {
		return int(flagged), err
	}
	return int(flagged), nil
}
