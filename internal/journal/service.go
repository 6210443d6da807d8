package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emberlog/emberlog/internal/shared"
)

// maxPersistRetries bounds optimistic-concurrency retries. Conflicts are
// the only retried outcome; validation failures are deterministic and
// surface immediately.
const maxPersistRetries = 3

// Service runs every mutation as a single logical transaction:
// load, apply in memory, validate the post-state, persist atomically.
// Mutations for one owner are serialized through a keyed mutex inside the
// process; the version stamp catches writers in other processes.
type Service struct {
	repo   Storage
	locks  *shared.KeyedMutex
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a Service over the storage collaborator.
func NewService(repo Storage, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		locks:  shared.NewKeyedMutex(),
		logger: logger,
		now:    time.Now,
	}
}

// GetOwner loads the aggregate read-only.
func (s *Service) GetOwner(ctx context.Context, ownerID string) (*Owner, error) {
	owner, err := s.repo.LoadOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner.Deleted {
		return nil, fmt.Errorf("%w: owner %s", ErrNotFound, ownerID)
	}
	return owner, nil
}

// ListEmotions returns the owner's emotions, active only unless asked.
func (s *Service) ListEmotions(ctx context.Context, ownerID string, includeDeleted bool) ([]Emotion, error) {
	owner, err := s.GetOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]Emotion, 0, len(owner.Emotions))
	for _, e := range owner.Emotions {
		if e.Deleted && !includeDeleted {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// ListDays returns the owner's days, active only unless asked.
func (s *Service) ListDays(ctx context.Context, ownerID string, includeDeleted bool) ([]Day, error) {
	owner, err := s.GetOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]Day, 0, len(owner.Days))
	for _, d := range owner.Days {
		if d.Deleted && !includeDeleted {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// AddEmotion creates an emotion for the owner.
func (s *Service) AddEmotion(ctx context.Context, ownerID string, req CreateEmotionRequest) (*Emotion, error) {
	emotion := Emotion{
		ID:    uuid.NewString(),
		Name:  strings.TrimSpace(req.Name),
		Color: strings.ToLower(req.Color),
	}
	owner, err := s.mutate(ctx, ownerID, func(o *Owner) error {
		return o.AddEmotion(emotion, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	return owner.FindEmotion(emotion.ID), nil
}

// UpdateEmotion applies a partial update to an active emotion.
func (s *Service) UpdateEmotion(ctx context.Context, ownerID, emotionID string, req UpdateEmotionRequest) (*Emotion, error) {
	var name, color *string
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		name = &trimmed
	}
	if req.Color != nil {
		lowered := strings.ToLower(*req.Color)
		color = &lowered
	}
	owner, err := s.mutate(ctx, ownerID, func(o *Owner) error {
		return o.UpdateEmotion(emotionID, name, color, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	return owner.FindEmotion(emotionID), nil
}

// SoftDeleteEmotion tombstones an emotion; repeats are no-ops.
func (s *Service) SoftDeleteEmotion(ctx context.Context, ownerID, emotionID string) error {
	_, err := s.mutate(ctx, ownerID, func(o *Owner) error {
		return o.SoftDeleteEmotion(emotionID, s.now().UTC())
	})
	return err
}

// AddDay creates a day for the owner.
func (s *Service) AddDay(ctx context.Context, ownerID string, req CreateDayRequest) (*Day, error) {
	day := Day{
		ID:          uuid.NewString(),
		Date:        req.Date,
		Description: req.Description,
		Emotions:    append([]string(nil), req.Emotions...),
	}
	owner, err := s.mutate(ctx, ownerID, func(o *Owner) error {
		return o.AddDay(day, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	return owner.FindActiveDay(day.Date), nil
}

// UpdateDay applies a partial update to the active day at date.
func (s *Service) UpdateDay(ctx context.Context, ownerID, date string, req UpdateDayRequest) (*Day, error) {
	resolved := date
	if req.Date != nil {
		resolved = *req.Date
	}
	owner, err := s.mutate(ctx, ownerID, func(o *Owner) error {
		return o.UpdateDay(date, req.Date, req.Description, req.Emotions, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	return owner.FindActiveDay(resolved), nil
}

// ListOwnerIDs returns ids of every non-tombstoned owner.
func (s *Service) ListOwnerIDs(ctx context.Context) ([]string, error) {
	return s.repo.ListOwnerIDs(ctx)
}

// SoftDeleteOwner tombstones the whole owner aggregate. The row and its
// document are kept; the owner simply stops resolving.
func (s *Service) SoftDeleteOwner(ctx context.Context, ownerID string) error {
	_, err := s.mutate(ctx, ownerID, func(o *Owner) error {
		o.Deleted = true
		o.UpdatedAt = s.now().UTC()
		return nil
	})
	return err
}

// SoftDeleteDay tombstones the active day at date; repeats are no-ops.
func (s *Service) SoftDeleteDay(ctx context.Context, ownerID, date string) error {
	_, err := s.mutate(ctx, ownerID, func(o *Owner) error {
		return o.SoftDeleteDay(date, s.now().UTC())
	})
	return err
}

// mutate implements the load-validate-persist transaction with bounded
// retries on version conflicts. A validation failure never reaches the
// persist step, so no partial write is observable.
func (s *Service) mutate(ctx context.Context, ownerID string, fn func(*Owner) error) (*Owner, error) {
	s.locks.Lock(ownerID)
	defer s.locks.Unlock(ownerID)

	var lastErr error
	for attempt := 0; attempt < maxPersistRetries; attempt++ {
		owner, err := s.repo.LoadOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if owner.Deleted {
			return nil, fmt.Errorf("%w: owner %s", ErrNotFound, ownerID)
		}
		if err := fn(owner); err != nil {
			return nil, err
		}
		if err := s.repo.PersistOwner(ctx, owner); err != nil {
			if errors.Is(err, ErrConflict) {
				lastErr = err
				if s.logger != nil {
					s.logger.Warn("persist conflict, retrying",
						slog.String("owner", ownerID), slog.Int("attempt", attempt+1))
				}
				continue
			}
			return nil, err
		}
		return owner, nil
	}
	return nil, lastErr
}
