package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/medconnect/clinic-platform/internal/events"
)

// ListQuery narrows List at the store level.
type ListQuery struct {
	Status Status
	UserID string // portal scope: appointments requested by this user
	Limit  int
	Offset int
}

// Repository defines the interface for appointment storage and lifecycle.
type Repository interface {
	Create(ctx context.Context, apt *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	List(ctx context.Context, q ListQuery) ([]*Appointment, error)
	Confirm(ctx context.Context, id string) (*Appointment, error)
	Cancel(ctx context.Context, id string) (*Appointment, error)
	Delete(ctx context.Context, id string) error
	Accept(ctx context.Context, id string) (*AcceptResult, error)
}

// PgxPool is the pool surface the repository needs; pgxpool.Pool and pgxmock
// both satisfy it.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in the relational database. All
// writes record a change event in the outbox within the same transaction.
type PostgresRepository struct {
	pool   PgxPool
	outbox *events.OutboxStore
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool, outbox *events.OutboxStore) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{pool: pool, outbox: outbox}
}

const appointmentColumns = `id, patient_id, patient_name, email, phone, date, time, duration_minutes, specialty, reason, notes, status, type, doctor_id, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var apt Appointment
	if err := row.Scan(
		&apt.ID,
		&apt.PatientID,
		&apt.PatientName,
		&apt.Email,
		&apt.Phone,
		&apt.Date,
		&apt.Time,
		&apt.DurationMinutes,
		&apt.Specialty,
		&apt.Reason,
		&apt.Notes,
		&apt.Status,
		&apt.Type,
		&apt.DoctorID,
		&apt.CreatedAt,
		&apt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &apt, nil
}

// Create inserts a new row. Status is always pending on creation; callers do
// not get to choose an initial state.
func (r *PostgresRepository) Create(ctx context.Context, apt *Appointment) error {
	if apt.ID == "" {
		apt.ID = uuid.New().String()
	}
	apt.Status = StatusPending

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("appointments: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO appointments (id, patient_id, patient_name, email, phone, date, time, duration_minutes, specialty, reason, notes, status, type, doctor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`
	if err := tx.QueryRow(ctx, query,
		apt.ID,
		apt.PatientID,
		apt.PatientName,
		apt.Email,
		apt.Phone,
		apt.Date,
		apt.Time,
		apt.DurationMinutes,
		apt.Specialty,
		apt.Reason,
		apt.Notes,
		string(apt.Status),
		string(apt.Type),
		apt.DoctorID,
	).Scan(&apt.CreatedAt, &apt.UpdatedAt); err != nil {
		return fmt.Errorf("appointments: insert failed: %w", err)
	}

	if err := r.recordEvent(ctx, tx, events.OpCreated, apt.ID, apt); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("appointments: commit: %w", err)
	}
	return nil
}

// GetByID fetches an appointment.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	apt, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return apt, nil
}

// List returns appointments ordered by date and time.
func (r *PostgresRepository) List(ctx context.Context, q ListQuery) ([]*Appointment, error) {
	var (
		conds []string
		args  []any
	)
	if q.Status != "" {
		args = append(args, string(q.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.UserID != "" {
		args = append(args, q.UserID)
		conds = append(conds, fmt.Sprintf("patient_id = $%d", len(args)))
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date, time"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		apt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, apt)
	}
	return out, rows.Err()
}

// Confirm moves a pending appointment to confirmed. Confirming an already
// confirmed appointment is a no-op; confirming a cancelled one is rejected.
func (r *PostgresRepository) Confirm(ctx context.Context, id string) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointments: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE appointments
		SET status = 'confirmed', updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + appointmentColumns
	apt, err := scanAppointment(tx.QueryRow(ctx, query, id))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("appointments: confirm failed: %w", err)
		}
		// Not pending: decide between no-op, invalid transition and missing.
		current, gerr := r.GetByID(ctx, id)
		if gerr != nil {
			return nil, gerr
		}
		if current.Status == StatusConfirmed {
			return current, nil
		}
		return nil, ErrInvalidTransition
	}

	if err := r.recordEvent(ctx, tx, events.OpUpdated, apt.ID, apt); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("appointments: commit: %w", err)
	}
	return apt, nil
}

// Cancel moves an appointment to cancelled. Cancelling twice is not an error.
func (r *PostgresRepository) Cancel(ctx context.Context, id string) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointments: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE appointments
		SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND status <> 'cancelled'
		RETURNING ` + appointmentColumns
	apt, err := scanAppointment(tx.QueryRow(ctx, query, id))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("appointments: cancel failed: %w", err)
		}
		// Already cancelled is fine; missing is not.
		return r.GetByID(ctx, id)
	}

	if err := r.recordEvent(ctx, tx, events.OpUpdated, apt.ID, apt); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("appointments: commit: %w", err)
	}
	return apt, nil
}

// Delete removes an appointment outright.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("appointments: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointments: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	if err := r.recordEvent(ctx, tx, events.OpDeleted, id, nil); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("appointments: commit: %w", err)
	}
	return nil
}

// Accept converts a pending appointment into a standalone patient record:
// the patient is created from the appointment's denormalized fields, the
// requester's remaining appointments are repointed at the new patient, and
// the accepted appointment is removed. One transaction, all or nothing.
func (r *PostgresRepository) Accept(ctx context.Context, id string) (*AcceptResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointments: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 FOR UPDATE`
	apt, err := scanAppointment(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: select for accept failed: %w", err)
	}
	if apt.Status != StatusPending {
		return nil, ErrNotPending
	}

	patientID := uuid.New().String()
	insertPatient := `
		INSERT INTO patients (id, name, email, phone, last_visit)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, insertPatient, patientID, apt.PatientName, apt.Email, apt.Phone, apt.Date); err != nil {
		return nil, fmt.Errorf("appointments: create patient failed: %w", err)
	}

	repointed := 0
	if apt.PatientID != "" {
		ct, err := tx.Exec(ctx,
			`UPDATE appointments SET patient_id = $1, updated_at = now() WHERE patient_id = $2 AND id <> $3`,
			patientID, apt.PatientID, apt.ID)
		if err != nil {
			return nil, fmt.Errorf("appointments: repoint failed: %w", err)
		}
		repointed = int(ct.RowsAffected())
	}

	if _, err := tx.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, apt.ID); err != nil {
		return nil, fmt.Errorf("appointments: delete accepted failed: %w", err)
	}

	if err := r.recordEventFor(ctx, tx, events.CollectionPatients, events.OpCreated, patientID, map[string]string{
		"name":       apt.PatientName,
		"email":      apt.Email,
		"phone":      apt.Phone,
		"last_visit": apt.Date,
	}); err != nil {
		return nil, err
	}
	if err := r.recordEvent(ctx, tx, events.OpDeleted, apt.ID, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("appointments: commit: %w", err)
	}
	return &AcceptResult{PatientID: patientID, Repointed: repointed, AcceptedID: apt.ID}, nil
}

func (r *PostgresRepository) recordEvent(ctx context.Context, q events.Querier, op events.Op, id string, payload any) error {
	return r.recordEventFor(ctx, q, events.CollectionAppointments, op, id, payload)
}

func (r *PostgresRepository) recordEventFor(ctx context.Context, q events.Querier, collection string, op events.Op, id string, payload any) error {
	if r.outbox == nil {
		return nil
	}
	if err := r.outbox.Insert(ctx, q, collection, op, id, payload); err != nil {
		return err
	}
	return nil
}
