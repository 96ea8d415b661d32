package messages

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/medconnect/clinic-platform/internal/events"
)

func newMockRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewPostgresRepository(mock, events.NewOutboxStore(mock)), mock
}

func messageRow(m *Message) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "from_name", "subject", "content", "read", "type", "to_doctor_id", "reply_to", "created_at",
	}).AddRow(m.ID, m.From, m.Subject, m.Content, m.Read, string(m.Type), m.ToDoctorID, m.ReplyTo, m.CreatedAt)
}

func TestPostgresMarkReadAlreadyReadIsNoOp(t *testing.T) {
	repo, mock := newMockRepo(t)
	m := &Message{ID: "m-1", From: "ana@example.com", Subject: "Consulta", Content: "b",
		Read: true, Type: TypePatient, ToDoctorID: "doc-1", CreatedAt: time.Now().UTC()}

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE messages SET read = true").
		WithArgs(m.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id"})) // guard did not match
	mock.ExpectQuery("SELECT (.+) FROM messages WHERE id").
		WithArgs(m.ID).
		WillReturnRows(messageRow(m))
	mock.ExpectRollback()

	got, err := repo.MarkRead(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !got.Read {
		t.Fatal("expected read message")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresReplyCreatesBackReferencedRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	original := &Message{ID: "m-1", From: "ana@example.com", Subject: "Consulta", Content: "b",
		Type: TypePatient, ToDoctorID: "doc-1", CreatedAt: now}

	mock.ExpectQuery("SELECT (.+) FROM messages WHERE id").
		WithArgs(original.ID).
		WillReturnRows(messageRow(original))
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO messages").
		WithArgs(pgxmock.AnyArg(), "doctor@clinic.example", "Re: Consulta", "Todo bien",
			false, "system", "ana@example.com", &original.ID).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectExec("INSERT INTO outbox").
		WithArgs(pgxmock.AnyArg(), events.CollectionMessages, string(events.OpCreated), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	reply, err := repo.Reply(context.Background(), original.ID, "doctor@clinic.example", "Todo bien")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if reply.Subject != "Re: Consulta" || reply.ReplyTo == nil || *reply.ReplyTo != original.ID {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresUnreadCount(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM messages").
		WithArgs("doc-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.UnreadCount(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3, got %d", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
