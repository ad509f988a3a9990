// Copyright (c) 2026 Housika. All rights reserved.

package auth

import (
	"context"
	"sync"
	"time"
)

type memoryCode struct {
	value     string
	expiresAt time.Time
}

// MemoryCodeStore is the single-instance [CodeStore]. Expired entries are
// dropped lazily on access.
type MemoryCodeStore struct {
	mu    sync.Mutex
	codes map[string]memoryCode
	now   func() time.Time
}

// NewMemoryCodeStore returns an empty store.
func NewMemoryCodeStore() *MemoryCodeStore {
	return &MemoryCodeStore{codes: make(map[string]memoryCode), now: time.Now}
}

// Put stores value under key for ttl.
func (repository *MemoryCodeStore) Put(_ context.Context, key, value string, ttl time.Duration) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.codes[key] = memoryCode{value: value, expiresAt: repository.now().Add(ttl)}
	return nil
}

// Take returns and removes the value under key.
func (repository *MemoryCodeStore) Take(_ context.Context, key string) (string, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	code, ok := repository.codes[key]
	if !ok {
		return "", ErrCodeNotFound
	}
	delete(repository.codes, key)

	if !repository.now().Before(code.expiresAt) {
		return "", ErrCodeNotFound
	}
	return code.value, nil
}

// Delete removes key.
func (repository *MemoryCodeStore) Delete(_ context.Context, key string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	delete(repository.codes, key)
	return nil
}
