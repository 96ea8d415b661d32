package settings

import (
	"context"
	"sync"
)

// InMemoryRepository implements Repository with map storage for tests.
type InMemoryRepository struct {
	mu   sync.RWMutex
	docs map[string]*DoctorSettings

	// Gets counts inner reads so cache tests can observe hits and misses.
	Gets int
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{docs: make(map[string]*DoctorSettings)}
}

func (r *InMemoryRepository) Get(_ context.Context, doctorID string) (*DoctorSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Gets++
	s, ok := r.docs[doctorID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	cp.WorkingHours.Days = append([]string(nil), s.WorkingHours.Days...)
	return &cp, nil
}

func (r *InMemoryRepository) Save(_ context.Context, s *DoctorSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *s
	cp.WorkingHours.Days = append([]string(nil), s.WorkingHours.Days...)
	r.docs[s.DoctorID] = &cp
	return nil
}

func (r *InMemoryRepository) Exists(_ context.Context, doctorID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.docs[doctorID]
	return ok, nil
}
