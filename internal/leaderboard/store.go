package leaderboard

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Store persists entries.
type Store interface {
	// Add stores e, assigning ID and CreatedAt, and returns the stored entry.
	Add(ctx context.Context, e Entry) (Entry, error)
	// Top returns up to n entries in table order.
	Top(ctx context.Context, n int) ([]Entry, error)
	Close() error
}

// MemoryStore keeps entries in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	nextID  uint64
	now     func() time.Time
}

// NewMemoryStore creates an empty store. A nil now uses time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{nextID: 1, now: now}
}

func (s *MemoryStore) Add(ctx context.Context, e Entry) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.nextID
	e.Rank = 0
	e.CreatedAt = s.now().UTC()
	s.nextID++

	i, _ := slices.BinarySearchFunc(s.entries, e, func(a, b Entry) int {
		if Less(a, b) {
			return -1
		}
		return 1
	})
	s.entries = slices.Insert(s.entries, i, e)
	return e, nil
}

func (s *MemoryStore) Top(ctx context.Context, n int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries[:min(n, len(s.entries))]), nil
}

func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
