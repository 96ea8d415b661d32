package messages

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/medconnect/clinic-platform/internal/events"
)

// Repository defines the interface for message storage.
type Repository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id string) (*Message, error)
	List(ctx context.Context, doctorID string) ([]*Message, error)
	MarkRead(ctx context.Context, id string) (*Message, error)
	UnreadCount(ctx context.Context, doctorID string) (int, error)
	Reply(ctx context.Context, id string, from, content string) (*Message, error)
	Delete(ctx context.Context, id string) error
}

// PgxPool is the pool surface the repository needs.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores messages in the relational database.
type PostgresRepository struct {
	pool   PgxPool
	outbox *events.OutboxStore
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool, outbox *events.OutboxStore) *PostgresRepository {
	if pool == nil {
		panic("messages: pgx pool required")
	}
	return &PostgresRepository{pool: pool, outbox: outbox}
}

const messageColumns = `id, from_name, subject, content, read, type, to_doctor_id, reply_to, created_at`

func scanMessage(row pgx.Row) (*Message, error) {
	var m Message
	var typ string
	if err := row.Scan(
		&m.ID,
		&m.From,
		&m.Subject,
		&m.Content,
		&m.Read,
		&typ,
		&m.ToDoctorID,
		&m.ReplyTo,
		&m.CreatedAt,
	); err != nil {
		return nil, err
	}
	m.Type = Type(typ)
	return &m, nil
}

// Create inserts a new message row. New messages are always unread.
func (r *PostgresRepository) Create(ctx context.Context, m *Message) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.Read = false
	if m.Type == "" {
		m.Type = TypePatient
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("messages: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO messages (id, from_name, subject, content, read, type, to_doctor_id, reply_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	if err := tx.QueryRow(ctx, query,
		m.ID,
		m.From,
		m.Subject,
		m.Content,
		m.Read,
		string(m.Type),
		m.ToDoctorID,
		m.ReplyTo,
	).Scan(&m.CreatedAt); err != nil {
		return fmt.Errorf("messages: insert failed: %w", err)
	}

	if err := r.recordEvent(ctx, tx, events.OpCreated, m.ID, m); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("messages: commit: %w", err)
	}
	return nil
}

// GetByID fetches a message.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`
	m, err := scanMessage(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("messages: select failed: %w", err)
	}
	return m, nil
}

// List returns the doctor's inbox, newest first.
func (r *PostgresRepository) List(ctx context.Context, doctorID string) ([]*Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE to_doctor_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("messages: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("messages: scan failed: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkRead flags a message as read. Marking an already-read message is a
// no-op that returns the current row.
func (r *PostgresRepository) MarkRead(ctx context.Context, id string) (*Message, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("messages: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `UPDATE messages SET read = true WHERE id = $1 AND read = false RETURNING ` + messageColumns
	m, err := scanMessage(tx.QueryRow(ctx, query, id))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("messages: mark read failed: %w", err)
		}
		return r.GetByID(ctx, id)
	}

	if err := r.recordEvent(ctx, tx, events.OpUpdated, m.ID, m); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("messages: commit: %w", err)
	}
	return m, nil
}

// UnreadCount returns the number of unread messages in the doctor's inbox.
func (r *PostgresRepository) UnreadCount(ctx context.Context, doctorID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM messages WHERE to_doctor_id = $1 AND read = false`
	if err := r.pool.QueryRow(ctx, query, doctorID).Scan(&count); err != nil {
		return 0, fmt.Errorf("messages: unread count failed: %w", err)
	}
	return count, nil
}

// Reply creates a new message answering an existing one: subject gets the
// "Re: " prefix, the row back-references the original, and it is addressed
// to the original sender.
func (r *PostgresRepository) Reply(ctx context.Context, id string, from, content string) (*Message, error) {
	original, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reply := &Message{
		From:       from,
		Subject:    replySubject(original.Subject),
		Content:    content,
		Type:       TypeSystem,
		ToDoctorID: original.From,
		ReplyTo:    &original.ID,
	}
	if err := r.Create(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// Delete removes a message outright.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("messages: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("messages: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	if err := r.recordEvent(ctx, tx, events.OpDeleted, id, nil); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("messages: commit: %w", err)
	}
	return nil
}

func (r *PostgresRepository) recordEvent(ctx context.Context, q events.Querier, op events.Op, id string, payload any) error {
	if r.outbox == nil {
		return nil
	}
	return r.outbox.Insert(ctx, q, events.CollectionMessages, op, id, payload)
}
