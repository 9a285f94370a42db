package onboarding

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresStore persists draft records as JSON blobs, giving founders a
// cross-session resume guarantee when the deployment opts into it.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a Postgres-backed draft store
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the drafts table if missing
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS onboarding_drafts (
			founder_id TEXT PRIMARY KEY,
			record     JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create onboarding_drafts table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, founderID string) (*DraftRecord, error) {
	var data []byte
	err := s.db.GetContext(ctx, &data,
		`SELECT record FROM onboarding_drafts WHERE founder_id = $1`, founderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}

	var record DraftRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode draft record: %w", err)
	}
	return &record, nil
}

func (s *PostgresStore) Put(ctx context.Context, record *DraftRecord) error {
	record.UpdatedAt = time.Now()
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode draft record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO onboarding_drafts (founder_id, record, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (founder_id) DO UPDATE SET record = $2, updated_at = $3`,
		record.FounderID, data, record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to store draft: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, founderID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM onboarding_drafts WHERE founder_id = $1`, founderID)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM onboarding_drafts WHERE updated_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired drafts: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
