package leads

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage.
type Repository interface {
	Create(ctx context.Context, lead *Lead) (*Lead, error)
	GetByID(ctx context.Context, id string) (*Lead, error)
	FindByMobile(ctx context.Context, mobile string) ([]*Lead, error)
	ExistsByMobile(ctx context.Context, mobile string) (bool, error)
	SetCallID(ctx context.Context, leadID, callID string) error
	UpdateCallStatus(ctx context.Context, leadID, status string) error
	// SaveHistoryEntry upserts one calling-history entry, keyed by
	// (lead, call id): an existing entry is updated in place, otherwise
	// the entry is appended.
	SaveHistoryEntry(ctx context.Context, leadID string, entry CallingHistoryEntry) error
	History(ctx context.Context, leadID string) ([]CallingHistoryEntry, error)
}

// InMemoryRepository is an in-memory Repository used in tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	leads   map[string]*Lead
	history map[string][]CallingHistoryEntry
	order   []string
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads:   make(map[string]*Lead),
		history: make(map[string][]CallingHistoryEntry),
	}
}

// Create stores a new lead, assigning an id when none is set.
func (r *InMemoryRepository) Create(ctx context.Context, lead *Lead) (*Lead, error) {
	if err := lead.Validate(); err != nil {
		return nil, err
	}

	stored := *lead
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	r.leads[stored.ID] = &stored
	r.order = append(r.order, stored.ID)
	r.mu.Unlock()

	cp := stored
	return &cp, nil
}

// GetByID retrieves a lead by id.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	cp := *lead
	return &cp, nil
}

// FindByMobile returns every lead with the given mobile number, in insertion order.
func (r *InMemoryRepository) FindByMobile(ctx context.Context, mobile string) ([]*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Lead
	for _, id := range r.order {
		if lead := r.leads[id]; lead.MobileNo == mobile {
			cp := *lead
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ExistsByMobile reports whether any lead has the given mobile number.
func (r *InMemoryRepository) ExistsByMobile(ctx context.Context, mobile string) (bool, error) {
	leads, err := r.FindByMobile(ctx, mobile)
	if err != nil {
		return false, err
	}
	return len(leads) > 0, nil
}

// SetCallID stores or clears the in-flight call id on a lead.
func (r *InMemoryRepository) SetCallID(ctx context.Context, leadID, callID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[leadID]
	if !ok {
		return ErrLeadNotFound
	}
	lead.CallID = callID
	return nil
}

// UpdateCallStatus sets the lead's call-status field.
func (r *InMemoryRepository) UpdateCallStatus(ctx context.Context, leadID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[leadID]
	if !ok {
		return ErrLeadNotFound
	}
	lead.CallStatus = status
	return nil
}

// SaveHistoryEntry updates the entry with the same call id in place, or
// appends a new one.
func (r *InMemoryRepository) SaveHistoryEntry(ctx context.Context, leadID string, entry CallingHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.leads[leadID]; !ok {
		return ErrLeadNotFound
	}
	entries := r.history[leadID]
	for i := range entries {
		if entries[i].CallID == entry.CallID {
			entries[i] = entry
			return nil
		}
	}
	r.history[leadID] = append(entries, entry)
	return nil
}

// History returns the lead's calling history in append order.
func (r *InMemoryRepository) History(ctx context.Context, leadID string) ([]CallingHistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]CallingHistoryEntry(nil), r.history[leadID]...), nil
}

// Count reports how many leads are stored. Test helper.
func (r *InMemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.leads)
}
