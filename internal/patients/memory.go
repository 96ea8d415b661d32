package patients

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository with map storage for tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	patients map[string]*Patient

	// History backs profile synthesis and the directory projection in
	// place of the appointments table.
	History []HistoryEntry
}

// HistoryEntry is a stand-in for one appointment row.
type HistoryEntry struct {
	PatientID string
	Name      string
	Email     string
	Phone     string
	Date      string
	Confirmed bool
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{patients: make(map[string]*Patient)}
}

func (r *InMemoryRepository) Create(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	for _, s := range []*[]string{&p.Allergies, &p.MedicalHistory, &p.Notes, &p.Files} {
		if *s == nil {
			*s = []string{}
		}
	}
	p.CreatedAt = time.Now().UTC()
	cp := clonePatient(p)
	r.patients[p.ID] = cp
	return nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.patients[id]; ok {
		return clonePatient(p), nil
	}

	var latest *HistoryEntry
	for i := range r.History {
		h := &r.History[i]
		if h.PatientID != id {
			continue
		}
		if latest == nil || h.Date > latest.Date {
			latest = h
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return &Patient{
		ID:             id,
		Name:           latest.Name,
		Email:          latest.Email,
		Phone:          latest.Phone,
		LastVisit:      latest.Date,
		Synthesized:    true,
		Allergies:      []string{},
		MedicalHistory: []string{},
		Notes:          []string{},
		Files:          []string{},
	}, nil
}

func (r *InMemoryRepository) List(_ context.Context, limit, offset int) ([]*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Patient
	for _, p := range r.patients {
		out = append(out, clonePatient(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (r *InMemoryRepository) AppendNote(_ context.Context, id, note string) (*Patient, error) {
	return r.appendTo(id, note, func(p *Patient, v string) { p.Notes = append(p.Notes, v) })
}

func (r *InMemoryRepository) AppendFile(_ context.Context, id, fileName string) (*Patient, error) {
	return r.appendTo(id, fileName, func(p *Patient, v string) { p.Files = append(p.Files, v) })
}

func (r *InMemoryRepository) appendTo(id, value string, apply func(*Patient, string)) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	apply(p, value)
	return clonePatient(p), nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[id]; !ok {
		return ErrNotFound
	}
	delete(r.patients, id)
	return nil
}

func (r *InMemoryRepository) Directory(_ context.Context, limit, offset int) ([]*DirectoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byKey := make(map[string]*DirectoryEntry)
	for _, h := range r.History {
		if !h.Confirmed {
			continue
		}
		key := strings.Join([]string{h.PatientID, h.Name, h.Email, h.Phone}, "\x00")
		e, ok := byKey[key]
		if !ok {
			e = &DirectoryEntry{PatientID: h.PatientID, Name: h.Name, Email: h.Email, Phone: h.Phone}
			byKey[key] = e
		}
		e.Visits++
		if h.Date > e.LastVisit {
			e.LastVisit = h.Date
		}
	}
	var out []*DirectoryEntry
	for _, e := range byKey {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (r *InMemoryRepository) Contact(ctx context.Context, id string) (string, string, string, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return "", "", "", err
	}
	return p.Name, p.Email, p.Phone, nil
}

func clonePatient(p *Patient) *Patient {
	cp := *p
	cp.Allergies = append([]string(nil), p.Allergies...)
	cp.MedicalHistory = append([]string(nil), p.MedicalHistory...)
	cp.Notes = append([]string(nil), p.Notes...)
	cp.Files = append([]string(nil), p.Files...)
	return &cp
}

func page[T any](in []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(in) {
			return nil
		}
		in = in[offset:]
	}
	if limit > 0 && len(in) > limit {
		in = in[:limit]
	}
	return in
}
