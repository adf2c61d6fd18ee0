package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type RedisBrowsingHistoryStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisBrowsingHistoryStore(client redis.UniversalClient, prefix string) *RedisBrowsingHistoryStore {
	if prefix == "" {
		prefix = "history"
	}
	return &RedisBrowsingHistoryStore{client: client, prefix: prefix}
}

// Push issues LREM, LPUSH and LTRIM as one MULTI/EXEC batch so no concurrent
// reader observes a partial update.
func (s *RedisBrowsingHistoryStore) Push(ctx context.Context, userID, skuID uint, cap int) error {
	key := s.key(userID)
	value := formatSKUID(skuID)
	pipe := s.client.TxPipeline()
	pipe.LRem(ctx, key, 0, value)
	pipe.LPush(ctx, key, value)
	pipe.LTrim(ctx, key, 0, int64(cap)-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return &TransientStoreError{Op: "browsing_history.push", Err: err}
	}
	return nil
}

func (s *RedisBrowsingHistoryStore) Recent(ctx context.Context, userID uint, limit int) ([]uint, error) {
	if limit <= 0 {
		return nil, nil
	}
	values, err := s.client.LRange(ctx, s.key(userID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, &TransientStoreError{Op: "browsing_history.recent", Err: err}
	}
	ids := make([]uint, 0, len(values))
	for _, v := range values {
		id, err := parseSKUID(v)
		if err != nil {
			return nil, &IntegrityError{Detail: fmt.Sprintf("non-numeric history entry %q for user %d", v, userID)}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *RedisBrowsingHistoryStore) key(userID uint) string {
	return fmt.Sprintf("%s:%d", s.prefix, userID)
}
