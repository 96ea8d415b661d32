package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/medconnect/clinic-platform/internal/events"
)

// Repository defines the interface for settings storage.
type Repository interface {
	Get(ctx context.Context, doctorID string) (*DoctorSettings, error)
	Save(ctx context.Context, s *DoctorSettings) error
	Exists(ctx context.Context, doctorID string) (bool, error)
}

// PgxPool is the pool surface the repository needs.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores each doctor's settings as one JSONB document.
// The document is always read and written whole.
type PostgresRepository struct {
	pool   PgxPool
	outbox *events.OutboxStore
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool, outbox *events.OutboxStore) *PostgresRepository {
	if pool == nil {
		panic("settings: pgx pool required")
	}
	return &PostgresRepository{pool: pool, outbox: outbox}
}

// Get fetches the settings document.
func (r *PostgresRepository) Get(ctx context.Context, doctorID string) (*DoctorSettings, error) {
	var doc []byte
	query := `SELECT document FROM doctor_settings WHERE doctor_id = $1`
	if err := r.pool.QueryRow(ctx, query, doctorID).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("settings: select failed: %w", err)
	}
	var s DoctorSettings
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, fmt.Errorf("settings: decode document: %w", err)
	}
	s.DoctorID = doctorID
	return &s, nil
}

// Save upserts the whole document.
func (r *PostgresRepository) Save(ctx context.Context, s *DoctorSettings) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("settings: encode document: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("settings: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO doctor_settings (doctor_id, document, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (doctor_id) DO UPDATE SET document = $2, updated_at = now()
	`
	if _, err := tx.Exec(ctx, query, s.DoctorID, doc); err != nil {
		return fmt.Errorf("settings: upsert failed: %w", err)
	}

	if r.outbox != nil {
		if err := r.outbox.Insert(ctx, tx, events.CollectionSettings, events.OpUpdated, s.DoctorID, s); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("settings: commit: %w", err)
	}
	return nil
}

// Exists reports whether the doctor has a settings row. Sign-in uses this to
// gate the doctor role.
func (r *PostgresRepository) Exists(ctx context.Context, doctorID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM doctor_settings WHERE doctor_id = $1)`
	if err := r.pool.QueryRow(ctx, query, doctorID).Scan(&exists); err != nil {
		return false, fmt.Errorf("settings: exists failed: %w", err)
	}
	return exists, nil
}
