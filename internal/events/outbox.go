package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/medconnect/clinic-platform/internal/observability/metrics"
	"github.com/medconnect/clinic-platform/pkg/logging"
)

var outboxTracer = otel.Tracer("medconnect.internal.events.outbox")

// Querier is the subset of pgx executable surfaces the outbox needs; both
// pgxpool.Pool and pgx.Tx satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DeliveryHandler emits committed events to downstream transports.
type DeliveryHandler interface {
	Handle(ctx context.Context, event ChangeEvent) error
}

// OutboxStore persists change events for reliable delivery.
type OutboxStore struct {
	pool Querier
}

func NewOutboxStore(pool Querier) *OutboxStore {
	if pool == nil {
		panic("events: querier required")
	}
	return &OutboxStore{pool: pool}
}

// Insert records a change event using q, which is typically the transaction
// performing the corresponding document write.
func (s *OutboxStore) Insert(ctx context.Context, q Querier, collection string, op Op, documentID string, payload any) error {
	if q == nil {
		q = s.pool
	}
	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("events: marshal payload: %w", err)
		}
	}
	query := `
		INSERT INTO outbox (id, collection, op, document_id, payload)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := q.Exec(ctx, query, uuid.New(), collection, string(op), documentID, data); err != nil {
		return fmt.Errorf("events: insert outbox: %w", err)
	}
	return nil
}

func (s *OutboxStore) FetchPending(ctx context.Context, limit int32) ([]ChangeEvent, error) {
	query := `
		SELECT id, collection, op, document_id, payload, created_at
		FROM outbox
		WHERE delivered_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("events: fetch pending: %w", err)
	}
	defer rows.Close()

	var entries []ChangeEvent
	for rows.Next() {
		var entry ChangeEvent
		var op string
		var payload []byte
		if err := rows.Scan(&entry.ID, &entry.Collection, &op, &entry.DocumentID, &payload, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("events: scan outbox: %w", err)
		}
		entry.Op = Op(op)
		entry.Payload = append([]byte(nil), payload...)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *OutboxStore) MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE outbox
		SET delivered_at = now()
		WHERE id = $1 AND delivered_at IS NULL
	`
	ct, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("events: mark delivered: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// Deliverer polls the outbox and invokes the handler.
type Deliverer struct {
	store     *OutboxStore
	handler   DeliveryHandler
	logger    *logging.Logger
	metrics   *metrics.ClinicMetrics
	batchSize int32
	interval  time.Duration
}

func NewDeliverer(store *OutboxStore, handler DeliveryHandler, logger *logging.Logger) *Deliverer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Deliverer{
		store:     store,
		handler:   handler,
		logger:    logger,
		batchSize: 100,
		interval:  2 * time.Second,
	}
}

func (d *Deliverer) WithBatchSize(size int32) *Deliverer {
	if size > 0 {
		d.batchSize = size
	}
	return d
}

func (d *Deliverer) WithInterval(interval time.Duration) *Deliverer {
	if interval > 0 {
		d.interval = interval
	}
	return d
}

func (d *Deliverer) WithMetrics(m *metrics.ClinicMetrics) *Deliverer {
	d.metrics = m
	return d
}

func (d *Deliverer) Start(ctx context.Context) {
	if d.store == nil || d.handler == nil {
		return
	}
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.drain(ctx)
		}
	}
}

func (d *Deliverer) drain(ctx context.Context) {
	ctx, span := outboxTracer.Start(ctx, "events.outbox.drain")
	defer span.End()

	entries, err := d.store.FetchPending(ctx, d.batchSize)
	if err != nil {
		span.RecordError(err)
		d.logger.Error("outbox fetch failed", "error", err)
		return
	}
	delivered := 0
	for _, entry := range entries {
		if err := d.handler.Handle(ctx, entry); err != nil {
			span.RecordError(err)
			d.logger.Error("outbox delivery failed", "error", err, "event_id", entry.ID, "collection", entry.Collection)
			continue
		}
		ok, err := d.store.MarkDelivered(ctx, entry.ID)
		if err != nil {
			span.RecordError(err)
			d.logger.Error("failed to mark outbox delivered", "error", err, "event_id", entry.ID)
			continue
		}
		if ok {
			delivered++
		}
	}
	span.SetAttributes(
		attribute.Int("outbox.fetched", len(entries)),
		attribute.Int("outbox.delivered", delivered),
	)
	d.metrics.ObserveOutboxDispatch(delivered)
}
