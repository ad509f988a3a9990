// Copyright (c) 2026 Housika. All rights reserved.

package session

import (
	"context"
	"sync"
	"time"
)

// MemoryRegistry is a process-local Registry.
//
// It is only correct for a single-instance deployment: a second process would
// not see revocations made here. Each user has its own lock, so operations on
// different users never contend.
type MemoryRegistry struct {
	users sync.Map // userID -> *memoryEntry
	now   func() time.Time
}

type memoryEntry struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

// NewMemoryRegistry creates an empty in-process registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{now: time.Now}
}

func (registry *MemoryRegistry) entry(userID string) *memoryEntry {
	value, _ := registry.users.LoadOrStore(userID, &memoryEntry{tokens: make(map[string]time.Time)})
	return value.(*memoryEntry)
}

// Add records a live token.
func (registry *MemoryRegistry) Add(_ context.Context, userID, tokenID string, expiresAt time.Time) error {
	entry := registry.entry(userID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	registry.pruneLocked(entry)
	entry.tokens[tokenID] = expiresAt
	return nil
}

// Replace swaps the user's token set for a single token under one lock.
func (registry *MemoryRegistry) Replace(_ context.Context, userID, tokenID string, expiresAt time.Time) error {
	entry := registry.entry(userID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.tokens = map[string]time.Time{tokenID: expiresAt}
	return nil
}

// RemoveOne forgets a single token.
func (registry *MemoryRegistry) RemoveOne(_ context.Context, userID, tokenID string) error {
	value, ok := registry.users.Load(userID)
	if !ok {
		return nil
	}
	entry := value.(*memoryEntry)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	delete(entry.tokens, tokenID)
	return nil
}

// RemoveAll forgets every token of the user.
//
// The entry is cleared in place rather than deleted from the map, so a
// concurrent Add holding the same entry cannot resurrect a stale set.
func (registry *MemoryRegistry) RemoveAll(_ context.Context, userID string) error {
	value, ok := registry.users.Load(userID)
	if !ok {
		return nil
	}
	entry := value.(*memoryEntry)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.tokens = make(map[string]time.Time)
	return nil
}

// IsLive reports membership, treating expired tokens as absent.
func (registry *MemoryRegistry) IsLive(_ context.Context, userID, tokenID string) (bool, error) {
	value, ok := registry.users.Load(userID)
	if !ok {
		return false, nil
	}
	entry := value.(*memoryEntry)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	expiresAt, ok := entry.tokens[tokenID]
	if !ok {
		return false, nil
	}
	return registry.now().Before(expiresAt), nil
}

// pruneLocked drops expired tokens. Caller holds entry.mu.
func (registry *MemoryRegistry) pruneLocked(entry *memoryEntry) {
	now := registry.now()
	for tokenID, expiresAt := range entry.tokens {
		if !now.Before(expiresAt) {
			delete(entry.tokens, tokenID)
		}
	}
}
