package users

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// ProviderRepository stores imported telephony agents.
type ProviderRepository interface {
	Insert(ctx context.Context, u *ProviderUser) (*ProviderUser, error)
	ExistsByProviderID(ctx context.Context, providerID int) (bool, error)
	GetByAgentName(ctx context.Context, agentName string) (*ProviderUser, error)
	GetByPhone(ctx context.Context, phone string) (*ProviderUser, error)
	List(ctx context.Context) ([]*ProviderUser, error)
}

// Directory looks up local CRM accounts.
type Directory interface {
	FindByMobile(ctx context.Context, mobile string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// InMemoryProviderRepository is a map-backed ProviderRepository for tests
// and local development.
type InMemoryProviderRepository struct {
	mu    sync.RWMutex
	users map[int]*ProviderUser
	order []int
}

// NewInMemoryProviderRepository creates an empty in-memory repository.
func NewInMemoryProviderRepository() *InMemoryProviderRepository {
	return &InMemoryProviderRepository{users: make(map[int]*ProviderUser)}
}

// Insert stores a provider user keyed by its provider id.
func (r *InMemoryProviderRepository) Insert(ctx context.Context, u *ProviderUser) (*ProviderUser, error) {
	if u.ProviderID == 0 {
		return nil, ErrMissingProviderID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *u
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if _, ok := r.users[stored.ProviderID]; !ok {
		r.order = append(r.order, stored.ProviderID)
	}
	r.users[stored.ProviderID] = &stored
	out := stored
	return &out, nil
}

// ExistsByProviderID reports whether the provider id is already imported.
func (r *InMemoryProviderRepository) ExistsByProviderID(ctx context.Context, providerID int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[providerID]
	return ok, nil
}

// GetByAgentName returns the first user with the given agent name.
func (r *InMemoryProviderRepository) GetByAgentName(ctx context.Context, agentName string) (*ProviderUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if r.users[id].AgentName == agentName {
			out := *r.users[id]
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// GetByPhone returns the first user with the given cleaned phone.
func (r *InMemoryProviderRepository) GetByPhone(ctx context.Context, phone string) (*ProviderUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if r.users[id].Phone == phone {
			out := *r.users[id]
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// List returns all imported users in insertion order.
func (r *InMemoryProviderRepository) List(ctx context.Context) ([]*ProviderUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ProviderUser, 0, len(r.order))
	for _, id := range r.order {
		u := *r.users[id]
		out = append(out, &u)
	}
	return out, nil
}

// Count returns the number of stored users.
func (r *InMemoryProviderRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// InMemoryDirectory is a fixed local user directory for tests.
type InMemoryDirectory struct {
	mu    sync.RWMutex
	users []*User
}

// NewInMemoryDirectory creates a directory over the given users.
func NewInMemoryDirectory(users ...*User) *InMemoryDirectory {
	d := &InMemoryDirectory{}
	for _, u := range users {
		d.Add(u)
	}
	return d
}

// Add registers a local user, assigning an id when absent.
func (d *InMemoryDirectory) Add(u *User) *User {
	d.mu.Lock()
	defer d.mu.Unlock()
	stored := *u
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	d.users = append(d.users, &stored)
	out := stored
	return &out
}

// FindByMobile returns the first user whose mobile number matches.
func (d *InMemoryDirectory) FindByMobile(ctx context.Context, mobile string) (*User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.MobileNo == mobile {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// GetByID returns the user with the given id.
func (d *InMemoryDirectory) GetByID(ctx context.Context, id string) (*User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.ID == id {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}
