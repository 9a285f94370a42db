package onboarding

import (
	"context"
	"sync"
	"time"
)

// DraftStore persists in-progress wizard sessions, one per founder. Whether
// drafts survive a restart is a deployment policy: the memory store is
// volatile, the Postgres store is not.
type DraftStore interface {
	Get(ctx context.Context, founderID string) (*DraftRecord, error)
	Put(ctx context.Context, record *DraftRecord) error
	Delete(ctx context.Context, founderID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}

// MemoryStore keeps drafts in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*DraftRecord
}

// NewMemoryStore creates an empty in-memory draft store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*DraftRecord)}
}

func (s *MemoryStore) Get(ctx context.Context, founderID string) (*DraftRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[founderID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return record.Clone(), nil
}

func (s *MemoryStore) Put(ctx context.Context, record *DraftRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.UpdatedAt = time.Now()
	s.records[record.FounderID] = record.Clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, founderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, founderID)
	return nil
}

func (s *MemoryStore) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for founderID, record := range s.records {
		if record.UpdatedAt.Before(before) {
			delete(s.records, founderID)
			removed++
		}
	}
	return removed, nil
}
