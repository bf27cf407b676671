package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/garyjia/procurement-hub/internal/application/port"
)

// IdempotencyStore keeps idempotency keys in process memory
type IdempotencyStore struct {
	mu      sync.Mutex
	records map[string]port.IdempotencyRecord
}

// NewIdempotencyStore creates an empty key store
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{records: make(map[string]port.IdempotencyRecord)}
}

// Get returns the record for key, or nil when unknown
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*port.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Save stores a record; a key can only be saved once
func (s *IdempotencyStore) Save(ctx context.Context, rec *port.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.Key]; exists {
		return fmt.Errorf("%w: %s", port.ErrIdempotencyConflict, rec.Key)
	}
	s.records[rec.Key] = *rec
	return nil
}

var _ port.IdempotencyRepository = (*IdempotencyStore)(nil)
