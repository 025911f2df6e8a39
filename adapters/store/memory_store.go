package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/ports"
)

// MemoryStore is an in-memory implementation of the NonceStore interface.
// Suitable for single-instance deployments; the nonce map is lost on restart,
// which only forces clients to request a fresh challenge.
type MemoryStore struct {
	records map[string]ports.NonceRecord
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory nonce store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]ports.NonceRecord),
	}
}

// Put stores or overwrites the nonce record for the address
func (s *MemoryStore) Put(ctx context.Context, address, nonce string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[address] = ports.NonceRecord{
		Nonce:    nonce,
		IssuedAt: time.Now(),
	}
	return nil
}

// Get returns the nonce record for the address
func (s *MemoryStore) Get(ctx context.Context, address string) (ports.NonceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[address]
	if !ok {
		return ports.NonceRecord{}, core.ErrUnknownNonce
	}
	return rec, nil
}

// Remove deletes the nonce record for the address
func (s *MemoryStore) Remove(ctx context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, address)
	return nil
}

// Consume deletes the record only if it still holds the given nonce.
// The compare and the delete happen under one lock, so of any number of
// concurrent Consume calls for the same address at most one wins.
func (s *MemoryStore) Consume(ctx context.Context, address, nonce string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[address]
	if !ok || rec.Nonce != nonce {
		return false, nil
	}

	delete(s.records, address)
	return true, nil
}

// Sweep deletes all records older than ttl
func (s *MemoryStore) Sweep(ctx context.Context, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	for address, rec := range s.records {
		if rec.IssuedAt.Before(cutoff) {
			delete(s.records, address)
		}
	}
	return nil
}
