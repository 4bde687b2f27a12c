package calllog

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Repository defines the interface for call log storage.
//
// Insert must be atomic with respect to the call id uniqueness guarantee:
// two concurrent inserts for the same call id yield exactly one stored
// record, with the loser reported as inserted == false rather than an error.
type Repository interface {
	Insert(ctx context.Context, rec *Record) (inserted bool, err error)
	GetByCallID(ctx context.Context, callID string) (*Record, error)
	ReplaceMissedAgents(ctx context.Context, callID string, entries []MissedAgentEntry) error
	ReplaceHangupRecords(ctx context.Context, callID string, entries []HangupRecordEntry) error
	MissedAgents(ctx context.Context, callID string) ([]MissedAgentEntry, error)
	HangupRecords(ctx context.Context, callID string) ([]HangupRecordEntry, error)
}

// InMemoryRepository is an in-memory Repository used in tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*Record
	missed  map[string][]MissedAgentEntry
	hangups map[string][]HangupRecordEntry
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[string]*Record),
		missed:  make(map[string][]MissedAgentEntry),
		hangups: make(map[string][]HangupRecordEntry),
	}
}

// Insert stores the record unless one already exists for its call id.
func (r *InMemoryRepository) Insert(ctx context.Context, rec *Record) (bool, error) {
	if strings.TrimSpace(rec.CallID) == "" {
		return false, ErrMissingCallID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[rec.CallID]; ok {
		return false, nil
	}
	stored := *rec
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.records[rec.CallID] = &stored
	return true, nil
}

// GetByCallID returns a copy of the stored record.
func (r *InMemoryRepository) GetByCallID(ctx context.Context, callID string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[callID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// ReplaceMissedAgents swaps the missed-agent sub-list wholesale.
func (r *InMemoryRepository) ReplaceMissedAgents(ctx context.Context, callID string, entries []MissedAgentEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[callID]; !ok {
		return ErrNotFound
	}
	r.missed[callID] = append([]MissedAgentEntry(nil), entries...)
	return nil
}

// ReplaceHangupRecords swaps the hangup sub-list wholesale.
func (r *InMemoryRepository) ReplaceHangupRecords(ctx context.Context, callID string, entries []HangupRecordEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[callID]; !ok {
		return ErrNotFound
	}
	r.hangups[callID] = append([]HangupRecordEntry(nil), entries...)
	return nil
}

// MissedAgents returns the ordered missed-agent sub-list.
func (r *InMemoryRepository) MissedAgents(ctx context.Context, callID string) ([]MissedAgentEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]MissedAgentEntry(nil), r.missed[callID]...), nil
}

// HangupRecords returns the ordered hangup sub-list.
func (r *InMemoryRepository) HangupRecords(ctx context.Context, callID string) ([]HangupRecordEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]HangupRecordEntry(nil), r.hangups[callID]...), nil
}

// Count reports how many records are stored. Test helper.
func (r *InMemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
