package service

import (
	"context"
	"sync"
	"time"
)

// VerificationCodeStore holds the short-lived SMS codes issued out-of-band.
// The issuer owns TTL management; this side only reads and consumes.
type VerificationCodeStore interface {
	// Get returns the live code for a mobile number. A missing or expired
	// code is (_, false, nil); errors are reserved for store failures.
	Get(ctx context.Context, mobile string) (string, bool, error)
	Delete(ctx context.Context, mobile string) error
}

type inMemoryCode struct {
	value     string
	expiresAt time.Time
}

// InMemoryVerificationCodeStore backs unit tests and single-process setups.
type InMemoryVerificationCodeStore struct {
	mu    sync.Mutex
	codes map[string]inMemoryCode
}

func NewInMemoryVerificationCodeStore() *InMemoryVerificationCodeStore {
	return &InMemoryVerificationCodeStore{codes: make(map[string]inMemoryCode)}
}

// Set exists so the external SMS issuer can be simulated.
func (s *InMemoryVerificationCodeStore) Set(mobile, code string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[mobile] = inMemoryCode{value: code, expiresAt: time.Now().Add(ttl)}
}

func (s *InMemoryVerificationCodeStore) Get(ctx context.Context, mobile string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.codes[mobile]
	if !ok {
		return "", false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.codes, mobile)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *InMemoryVerificationCodeStore) Delete(ctx context.Context, mobile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, mobile)
	return nil
}
