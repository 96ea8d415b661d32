package appointments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository with map storage. It mirrors the
// Postgres lifecycle semantics and backs handler tests.
type InMemoryRepository struct {
	mu           sync.RWMutex
	appointments map[string]*Appointment

	// AcceptedPatients records patients synthesized by Accept.
	AcceptedPatients map[string]map[string]string
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		appointments:     make(map[string]*Appointment),
		AcceptedPatients: make(map[string]map[string]string),
	}
}

func (r *InMemoryRepository) Create(_ context.Context, apt *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if apt.ID == "" {
		apt.ID = uuid.New().String()
	}
	apt.Status = StatusPending
	now := time.Now().UTC()
	apt.CreatedAt = now
	apt.UpdatedAt = now

	cp := *apt
	r.appointments[apt.ID] = &cp
	return nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	apt, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *apt
	return &cp, nil
}

func (r *InMemoryRepository) List(_ context.Context, q ListQuery) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Appointment
	for _, apt := range r.appointments {
		if q.Status != "" && apt.Status != q.Status {
			continue
		}
		if q.UserID != "" && apt.PatientID != q.UserID {
			continue
		}
		cp := *apt
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return nil, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *InMemoryRepository) Confirm(_ context.Context, id string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	apt, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	switch apt.Status {
	case StatusPending:
		apt.Status = StatusConfirmed
		apt.UpdatedAt = time.Now().UTC()
	case StatusConfirmed:
		// no-op
	case StatusCancelled:
		return nil, ErrInvalidTransition
	}
	cp := *apt
	return &cp, nil
}

func (r *InMemoryRepository) Cancel(_ context.Context, id string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	apt, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	if apt.Status != StatusCancelled {
		apt.Status = StatusCancelled
		apt.UpdatedAt = time.Now().UTC()
	}
	cp := *apt
	return &cp, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[id]; !ok {
		return ErrNotFound
	}
	delete(r.appointments, id)
	return nil
}

func (r *InMemoryRepository) Accept(_ context.Context, id string) (*AcceptResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	apt, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	if apt.Status != StatusPending {
		return nil, ErrNotPending
	}

	patientID := uuid.New().String()
	r.AcceptedPatients[patientID] = map[string]string{
		"name":       apt.PatientName,
		"email":      apt.Email,
		"phone":      apt.Phone,
		"last_visit": apt.Date,
	}

	repointed := 0
	if apt.PatientID != "" {
		for _, other := range r.appointments {
			if other.ID != apt.ID && other.PatientID == apt.PatientID {
				other.PatientID = patientID
				other.UpdatedAt = time.Now().UTC()
				repointed++
			}
		}
	}
	delete(r.appointments, apt.ID)

	return &AcceptResult{PatientID: patientID, Repointed: repointed, AcceptedID: apt.ID}, nil
}
