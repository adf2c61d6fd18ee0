package service

import (
	"context"

	"github.com/redis/go-redis/v9"
)

type RedisVerificationCodeStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisVerificationCodeStore(client redis.UniversalClient, prefix string) *RedisVerificationCodeStore {
	if prefix == "" {
		prefix = "sms"
	}
	return &RedisVerificationCodeStore{client: client, prefix: prefix}
}

func (s *RedisVerificationCodeStore) Get(ctx context.Context, mobile string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(mobile)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, &TransientStoreError{Op: "verification_code.get", Err: err}
	}
	return value, true, nil
}

func (s *RedisVerificationCodeStore) Delete(ctx context.Context, mobile string) error {
	if err := s.client.Del(ctx, s.key(mobile)).Err(); err != nil {
		return &TransientStoreError{Op: "verification_code.delete", Err: err}
	}
	return nil
}

func (s *RedisVerificationCodeStore) key(mobile string) string {
	return s.prefix + ":" + mobile
}
