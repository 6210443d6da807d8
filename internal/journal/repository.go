package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Storage is the narrow persistence contract the core consumes. The owner
// document is read and written whole; all active/tombstone filtering
// happens in memory after load, never through ad-hoc queries.
type Storage interface {
	// LoadOwner fetches the aggregate by id; ErrNotFound when absent.
	LoadOwner(ctx context.Context, id string) (*Owner, error)
	// PersistOwner writes the aggregate back atomically, guarded by the
	// version stamp captured at load. A stale stamp yields ErrConflict;
	// collaborator failures yield ErrStorage and may be retried.
	PersistOwner(ctx context.Context, owner *Owner) error
	// ListOwnerIDs returns ids of all non-tombstoned owners.
	ListOwnerIDs(ctx context.Context) ([]string, error)
}

// document is the JSONB shape of the embedded collections.
type document struct {
	Emotions []Emotion `json:"emotions"`
	Days     []Day     `json:"days"`
}

// PGStorage implements Storage over a single owners table with a JSONB
// document column and a bigint version stamp.
type PGStorage struct {
	pool *pgxpool.Pool
}

// NewStorage constructs a PostgreSQL-backed Storage.
func NewStorage(pool *pgxpool.Pool) *PGStorage {
	return &PGStorage{pool: pool}
}

func (s *PGStorage) LoadOwner(ctx context.Context, id string) (*Owner, error) {
	const query = `
		SELECT id, email, password_hash, role, deleted, version, doc, created_at, updated_at
		FROM owners
		WHERE id = $1
	`
	var (
		owner Owner
		raw   []byte
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&owner.ID, &owner.Email, &owner.PasswordHash, &owner.Role,
		&owner.Deleted, &owner.Version, &raw, &owner.CreatedAt, &owner.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: owner %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: load owner: %v", ErrStorage, err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode owner document: %v", ErrStorage, err)
	}
	owner.Emotions = doc.Emotions
	owner.Days = doc.Days
	return &owner, nil
}

func (s *PGStorage) PersistOwner(ctx context.Context, owner *Owner) error {
	raw, err := json.Marshal(document{Emotions: owner.Emotions, Days: owner.Days})
	if err != nil {
		return fmt.Errorf("%w: encode owner document: %v", ErrStorage, err)
	}

	const query = `
		UPDATE owners
		SET doc = $1, role = $2, deleted = $3, version = version + 1, updated_at = $4
		WHERE id = $5 AND version = $6
	`
	now := time.Now().UTC()
	tag, err := s.pool.Exec(ctx, query, raw, owner.Role, owner.Deleted, now, owner.ID, owner.Version)
	if err != nil {
		return fmt.Errorf("%w: persist owner: %v", ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		exists, err := s.ownerExists(ctx, owner.ID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: owner %s", ErrNotFound, owner.ID)
		}
		return fmt.Errorf("%w: owner %s at version %d", ErrConflict, owner.ID, owner.Version)
	}
	owner.Version++
	owner.UpdatedAt = now
	return nil
}

func (s *PGStorage) ListOwnerIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM owners WHERE deleted = false ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list owners: %v", ErrStorage, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan owner id: %v", ErrStorage, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list owners: %v", ErrStorage, err)
	}
	return ids, nil
}

func (s *PGStorage) ownerExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM owners WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: owner exists: %v", ErrStorage, err)
	}
	return exists, nil
}

var _ Storage = (*PGStorage)(nil)
