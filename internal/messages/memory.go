package messages

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository with map storage for tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	messages map[string]*Message
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{messages: make(map[string]*Message)}
}

func (r *InMemoryRepository) Create(_ context.Context, m *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.Read = false
	if m.Type == "" {
		m.Type = TypePatient
	}
	m.CreatedAt = time.Now().UTC()

	cp := *m
	r.messages[m.ID] = &cp
	return nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *InMemoryRepository) List(_ context.Context, doctorID string) ([]*Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Message
	for _, m := range r.messages {
		if m.ToDoctorID != doctorID {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) MarkRead(_ context.Context, id string) (*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	m.Read = true
	cp := *m
	return &cp, nil
}

func (r *InMemoryRepository) UnreadCount(_ context.Context, doctorID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, m := range r.messages {
		if m.ToDoctorID == doctorID && !m.Read {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryRepository) Reply(ctx context.Context, id string, from, content string) (*Message, error) {
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

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.messages[id]; !ok {
		return ErrNotFound
	}
	delete(r.messages, id)
	return nil
}
