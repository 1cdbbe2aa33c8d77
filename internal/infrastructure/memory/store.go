// Package memory is an in-process backing store with the same ownership and
// ordering guarantees as the postgres repositories. It serves STORAGE=memory
// local runs and tests.
package memory

import (
	"context"
	"sync"
	"time"
)

// Store holds users and diaries behind one lock, the in-memory equivalent of
// the database handle shared by the postgres repositories.
type Store struct {
	mu      sync.RWMutex
	now     func() time.Time
	nextID  int64
	users   map[int64]*userRow
	emails  map[string]int64
	diaries map[int64]*diaryRow
}

func NewStore() *Store {
	return &Store{
		now:     time.Now,
		users:   make(map[int64]*userRow),
		emails:  make(map[string]int64),
		diaries: make(map[int64]*diaryRow),
	}
}

// WithClock replaces the timestamp source. Tests use it to pin created_at.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// Ping satisfies health.Pinger.
func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}
