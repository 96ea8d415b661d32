package patients

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/medconnect/clinic-platform/internal/events"
)

// Repository defines the interface for patient storage.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id string) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, error)
	AppendNote(ctx context.Context, id, note string) (*Patient, error)
	AppendFile(ctx context.Context, id, fileName string) (*Patient, error)
	Delete(ctx context.Context, id string) error
	Directory(ctx context.Context, limit, offset int) ([]*DirectoryEntry, error)
	Contact(ctx context.Context, id string) (name, email, phone string, err error)
}

// PgxPool is the pool surface the repository needs.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores patients in the relational database. Array fields
// map to text[] columns.
type PostgresRepository struct {
	pool   PgxPool
	outbox *events.OutboxStore
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool, outbox *events.OutboxStore) *PostgresRepository {
	if pool == nil {
		panic("patients: pgx pool required")
	}
	return &PostgresRepository{pool: pool, outbox: outbox}
}

const patientColumns = `id, name, age, phone, email, address, emergency_contact, blood_type, allergies, medical_history, notes, files, last_visit, created_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Age,
		&p.Phone,
		&p.Email,
		&p.Address,
		&p.EmergencyContact,
		&p.BloodType,
		&p.Allergies,
		&p.MedicalHistory,
		&p.Notes,
		&p.Files,
		&p.LastVisit,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new patient row.
func (r *PostgresRepository) Create(ctx context.Context, p *Patient) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Allergies == nil {
		p.Allergies = []string{}
	}
	if p.MedicalHistory == nil {
		p.MedicalHistory = []string{}
	}
	if p.Notes == nil {
		p.Notes = []string{}
	}
	if p.Files == nil {
		p.Files = []string{}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("patients: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO patients (id, name, age, phone, email, address, emergency_contact, blood_type, allergies, medical_history, notes, files, last_visit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at
	`
	if err := tx.QueryRow(ctx, query,
		p.ID,
		p.Name,
		p.Age,
		p.Phone,
		p.Email,
		p.Address,
		p.EmergencyContact,
		p.BloodType,
		p.Allergies,
		p.MedicalHistory,
		p.Notes,
		p.Files,
		p.LastVisit,
	).Scan(&p.CreatedAt); err != nil {
		return fmt.Errorf("patients: insert failed: %w", err)
	}

	if err := r.recordEvent(ctx, tx, events.OpCreated, p.ID, p); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("patients: commit: %w", err)
	}
	return nil
}

// GetByID fetches a patient. When no row exists, the profile is synthesized
// from the patient's appointment history so the profile page still renders
// for requesters who were never formally registered.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	p, err := scanPatient(r.pool.QueryRow(ctx, query, id))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("patients: select failed: %w", err)
	}
	return r.synthesize(ctx, id)
}

func (r *PostgresRepository) synthesize(ctx context.Context, id string) (*Patient, error) {
	query := `
		SELECT patient_name, email, phone, MAX(date)
		FROM appointments
		WHERE patient_id = $1
		GROUP BY patient_name, email, phone
		ORDER BY MAX(date) DESC
		LIMIT 1
	`
	var p Patient
	if err := r.pool.QueryRow(ctx, query, id).Scan(&p.Name, &p.Email, &p.Phone, &p.LastVisit); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("patients: synthesize failed: %w", err)
	}
	p.ID = id
	p.Synthesized = true
	p.Allergies = []string{}
	p.MedicalHistory = []string{}
	p.Notes = []string{}
	p.Files = []string{}
	return &p, nil
}

// List returns registered patients ordered by name.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY name LIMIT $1 OFFSET $2`
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("patients: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("patients: scan failed: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AppendNote adds one note to the patient's record.
func (r *PostgresRepository) AppendNote(ctx context.Context, id, note string) (*Patient, error) {
	return r.appendTo(ctx, "notes", id, note)
}

// AppendFile records one file name on the patient's record.
func (r *PostgresRepository) AppendFile(ctx context.Context, id, fileName string) (*Patient, error) {
	return r.appendTo(ctx, "files", id, fileName)
}

func (r *PostgresRepository) appendTo(ctx context.Context, column, id, value string) (*Patient, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("patients: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// column is one of two compile-time constants, never caller input.
	query := `UPDATE patients SET ` + column + ` = array_append(` + column + `, $2) WHERE id = $1 RETURNING ` + patientColumns
	p, err := scanPatient(tx.QueryRow(ctx, query, id, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("patients: append %s failed: %w", column, err)
	}

	if err := r.recordEvent(ctx, tx, events.OpUpdated, p.ID, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("patients: commit: %w", err)
	}
	return p, nil
}

// Delete removes a patient row.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("patients: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("patients: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	if err := r.recordEvent(ctx, tx, events.OpDeleted, id, nil); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("patients: commit: %w", err)
	}
	return nil
}

// Directory projects the patient directory from confirmed appointments. The
// aggregation happens in SQL so the page cost stays bounded by the limit.
func (r *PostgresRepository) Directory(ctx context.Context, limit, offset int) ([]*DirectoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT patient_id, patient_name, email, phone, MAX(date) AS last_visit, COUNT(*) AS visits
		FROM appointments
		WHERE status = 'confirmed'
		GROUP BY patient_id, patient_name, email, phone
		ORDER BY patient_name
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("patients: directory failed: %w", err)
	}
	defer rows.Close()

	var out []*DirectoryEntry
	for rows.Next() {
		var e DirectoryEntry
		if err := rows.Scan(&e.PatientID, &e.Name, &e.Email, &e.Phone, &e.LastVisit, &e.Visits); err != nil {
			return nil, fmt.Errorf("patients: directory scan failed: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// Contact resolves a patient reference into contact fields. Falls back to
// appointment history the same way GetByID does.
func (r *PostgresRepository) Contact(ctx context.Context, id string) (string, string, string, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return "", "", "", err
	}
	return p.Name, p.Email, p.Phone, nil
}

func (r *PostgresRepository) recordEvent(ctx context.Context, q events.Querier, op events.Op, id string, payload any) error {
	if r.outbox == nil {
		return nil
	}
	return r.outbox.Insert(ctx, q, events.CollectionPatients, op, id, payload)
}
