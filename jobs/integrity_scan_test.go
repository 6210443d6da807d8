package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/emberlog/emberlog/internal/journal"
	_ "github.com/emberlog/emberlog/testing"
)

type memStorage struct {
	owners map[string]*journal.Owner
}

func (m *memStorage) LoadOwner(ctx context.Context, id string) (*journal.Owner, error) {
	owner, ok := m.owners[id]
	if !ok {
		return nil, journal.ErrNotFound
	}
	return owner, nil
}

func (m *memStorage) PersistOwner(ctx context.Context, owner *journal.Owner) error {
	m.owners[owner.ID] = owner
	return nil
}

func (m *memStorage) ListOwnerIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.owners))
	for id := range m.owners {
		ids = append(ids, id)
	}
	return ids, nil
}

func newScanner(storage journal.Storage) *IntegrityScanner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewIntegrityScanner(storage, logger, nil)
}

func TestScanCleanOwners(t *testing.T) {
	now := time.Now().UTC()
	storage := &memStorage{owners: map[string]*journal.Owner{
		"o1": {
			ID: "o1",
			Emotions: []journal.Emotion{
				{ID: "e1", Name: "Joy", Color: "#ffcc00", CreatedAt: now, UpdatedAt: now},
			},
			Days: []journal.Day{
				{ID: "d1", Date: "2024-03-01", Emotions: []string{"e1"}, CreatedAt: now, UpdatedAt: now},
			},
		},
	}}

	flagged, err := newScanner(storage).Scan(context.Background(), nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if flagged != 0 {
		t.Fatalf("expected no flagged owners, got %d", flagged)
	}
}

func TestScanFlagsDuplicateNames(t *testing.T) {
	now := time.Now().UTC()
	storage := &memStorage{owners: map[string]*journal.Owner{
		"o1": {
			ID: "o1",
			Emotions: []journal.Emotion{
				{ID: "e1", Name: "Joy", Color: "#ffcc00", CreatedAt: now, UpdatedAt: now},
				{ID: "e2", Name: "Joy", Color: "#00ccff", CreatedAt: now, UpdatedAt: now},
			},
		},
	}}

	flagged, err := newScanner(storage).Scan(context.Background(), nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if flagged != 1 {
		t.Fatalf("expected 1 flagged owner, got %d", flagged)
	}
}

func TestScanSkipsTombstonedOwners(t *testing.T) {
	now := time.Now().UTC()
	storage := &memStorage{owners: map[string]*journal.Owner{
		"o1": {
			ID:      "o1",
			Deleted: true,
			Emotions: []journal.Emotion{
				{ID: "e1", Name: "Joy", Color: "#ffcc00", CreatedAt: now, UpdatedAt: now},
				{ID: "e2", Name: "Joy", Color: "#00ccff", CreatedAt: now, UpdatedAt: now},
			},
		},
	}}

	flagged, err := newScanner(storage).Scan(context.Background(), []string{"o1", "missing"})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if flagged != 0 {
		t.Fatalf("expected tombstoned owner to be skipped, got %d", flagged)
	}
}
