package service

import (
	"context"
	"strconv"
	"sync"
)

// BrowsingHistoryStore keeps one deduplicated, most-recent-first, capped list
// of viewed SKU ids per user.
type BrowsingHistoryStore interface {
	// Push records a view as a single atomic batch: remove existing
	// occurrences of skuID, insert it at the head, truncate to cap entries.
	// Concurrent pushes by different callers for the same user may interleave
	// between batches; each batch truncates independently, so the list never
	// exceeds cap, though strict recency across the racing writers is not
	// guaranteed.
	Push(ctx context.Context, userID, skuID uint, cap int) error
	// Recent returns at most limit ids, most-recent-first. Read-only.
	Recent(ctx context.Context, userID uint, limit int) ([]uint, error)
}

// InMemoryBrowsingHistoryStore mirrors the redis semantics for unit tests.
type InMemoryBrowsingHistoryStore struct {
	mu    sync.Mutex
	lists map[uint][]uint
}

func NewInMemoryBrowsingHistoryStore() *InMemoryBrowsingHistoryStore {
	return &InMemoryBrowsingHistoryStore{lists: make(map[uint][]uint)}
}

func (s *InMemoryBrowsingHistoryStore) Push(ctx context.Context, userID, skuID uint, cap int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.lists[userID]
	next := make([]uint, 0, len(current)+1)
	next = append(next, skuID)
	for _, id := range current {
		if id != skuID {
			next = append(next, id)
		}
	}
	if len(next) > cap {
		next = next[:cap]
	}
	s.lists[userID] = next
	return nil
}

func (s *InMemoryBrowsingHistoryStore) Recent(ctx context.Context, userID uint, limit int) ([]uint, error) {
	if limit <= 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.lists[userID]
	if limit > len(current) {
		limit = len(current)
	}
	out := make([]uint, limit)
	copy(out, current[:limit])
	return out, nil
}

func formatSKUID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func parseSKUID(v string) (uint, error) {
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
