package leads

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage
type Repository interface {
	List(ctx context.Context) ([]Lead, error)
	GetByID(ctx context.Context, id string) (Lead, error)
	Add(ctx context.Context, lead Lead) (Lead, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Lead, error)
	UpdateValue(ctx context.Context, id string, value *float64) (Lead, error)
}

// InMemoryRepository keeps leads in insertion order for the lifetime of the process.
// Leads are never deleted.
type InMemoryRepository struct {
	mu    sync.RWMutex
	order []string
	leads map[string]*Lead
}

// NewInMemoryRepository creates a repository holding the given leads.
func NewInMemoryRepository(seed ...Lead) *InMemoryRepository {
	r := &InMemoryRepository{
		leads: make(map[string]*Lead, len(seed)),
	}
	for _, lead := range seed {
		if _, err := r.Add(context.Background(), lead); err != nil {
			panic(fmt.Sprintf("leads: invalid seed lead %q: %v", lead.ID, err))
		}
	}
	return r
}

// List returns a snapshot of every lead.
func (r *InMemoryRepository) List(ctx context.Context) ([]Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Lead, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.leads[id].clone())
	}
	return out, nil
}

// GetByID retrieves a lead by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return Lead{}, ErrLeadNotFound
	}
	return lead.clone(), nil
}

// Add appends a lead, assigning a fresh id when none is set.
func (r *InMemoryRepository) Add(ctx context.Context, lead Lead) (Lead, error) {
	if err := lead.Validate(); err != nil {
		return Lead{}, err
	}
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.leads[lead.ID]; exists {
		return Lead{}, fmt.Errorf("%w: %s", ErrDuplicateLead, lead.ID)
	}
	stored := lead.clone()
	r.leads[lead.ID] = &stored
	r.order = append(r.order, lead.ID)
	return stored.clone(), nil
}

// UpdateStatus rewrites the status of one lead.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, status Status) (Lead, error) {
	if !status.Valid() {
		return Lead{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return Lead{}, ErrLeadNotFound
	}
	lead.Status = status
	return lead.clone(), nil
}

// UpdateValue replaces the monetary value of one lead. A nil value clears it.
func (r *InMemoryRepository) UpdateValue(ctx context.Context, id string, value *float64) (Lead, error) {
	if value != nil && *value < 0 {
		return Lead{}, ErrInvalidValue
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return Lead{}, ErrLeadNotFound
	}
	if value == nil {
		lead.Value = nil
	} else {
		v := *value
		lead.Value = &v
	}
	return lead.clone(), nil
}
