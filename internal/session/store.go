// Package session holds clarification session state behind a small store
// capability, with in-memory and Redis-backed implementations selected at
// startup.
package session

import (
	"context"
	"sync"

	"github.com/af-corp/atlas-planner/internal/types"
)

// Record is the per-session clarification state. It is owned exclusively by
// the store; callers read a copy, mutate it, and write it back.
type Record struct {
	Intent    types.TripIntent `json:"intent"`
	Gaps      []string         `json:"gaps"`
	Round     int              `json:"round"`
	MaxRounds int              `json:"max_rounds"`
}

// Store is the session capability. Each operation is atomic per key.
type Store interface {
	Create(ctx context.Context, sessionID string, rec Record) error
	Get(ctx context.Context, sessionID string) (*Record, error)
	Update(ctx context.Context, sessionID string, rec Record) error
	Remove(ctx context.Context, sessionID string) error
	Keys(ctx context.Context) ([]string, error)
}

// MemoryStore is a mutex-guarded map store. Whole-store locking is
// sufficient at this scale.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Record)}
}

func (s *MemoryStore) Create(_ context.Context, sessionID string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[sessionID]
	if !ok {
		return nil, nil
	}
	cp := rec
	return &cp, nil
}

func (s *MemoryStore) Update(_ context.Context, sessionID string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[sessionID]; ok {
		s.data[sessionID] = rec
	}
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}
