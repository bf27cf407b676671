package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/garyjia/procurement-hub/internal/application/port"
	"github.com/garyjia/procurement-hub/internal/domain/entity"
)

// RequestStore keeps purchase requests in process memory.
// Values are cloned on the way in and out so callers never share state with the store.
type RequestStore struct {
	mu       sync.RWMutex
	requests map[string]*entity.Request
	seqs     map[string]int
	highest  int
	logger   *zap.Logger
}

// NewRequestStore creates a store holding copies of seed
func NewRequestStore(logger *zap.Logger, seed ...*entity.Request) (*RequestStore, error) {
	s := &RequestStore{
		requests: make(map[string]*entity.Request),
		seqs:     make(map[string]int),
		logger:   logger,
	}
	for _, req := range seed {
		if err := s.Create(context.Background(), req); err != nil {
			return nil, fmt.Errorf("failed to seed request %s: %w", req.ID, err)
		}
	}
	return s, nil
}

// Get returns a copy of the request, or nil when it does not exist
func (s *RequestStore) Get(ctx context.Context, id string) (*entity.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	return req.Clone(), nil
}

// List returns copies of every request, newest first
func (s *RequestStore) List(ctx context.Context) ([]*entity.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.Request, 0, len(s.requests))
	for _, req := range s.requests {
		out = append(out, req.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return s.seqs[out[i].ID] > s.seqs[out[j].ID]
	})
	return out, nil
}

// Create stores a copy of req, assigning the next RFQ id when none is set
func (s *RequestStore) Create(ctx context.Context, req *entity.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var seq int
	if req.ID == "" {
		seq = entity.NextSequence(s.highest)
		req.ID = entity.FormatRequestID(req.CreatedAt.Year(), seq)
	} else {
		_, parsed, err := entity.ParseRequestID(req.ID)
		if err != nil {
			return err
		}
		seq = parsed
	}

	if _, exists := s.requests[req.ID]; exists {
		return fmt.Errorf("%w: %s", port.ErrRequestExists, req.ID)
	}

	s.requests[req.ID] = req.Clone()
	s.seqs[req.ID] = seq
	if seq > s.highest {
		s.highest = seq
	}
	return nil
}

// Update replaces the stored request; recorded events must be kept as a prefix
func (s *RequestStore) Update(ctx context.Context, req *entity.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.requests[req.ID]
	if !ok {
		return fmt.Errorf("%w: %s", port.ErrRequestNotFound, req.ID)
	}
	if err := port.CheckTimelineAppend(stored.Timeline, req.Timeline); err != nil {
		s.logger.Error("Rejected timeline rewrite", zap.String("id", req.ID))
		return fmt.Errorf("failed to update request %s: %w", req.ID, err)
	}

	s.requests[req.ID] = req.Clone()
	return nil
}

// Delete removes a request
func (s *RequestStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[id]; !ok {
		return fmt.Errorf("%w: %s", port.ErrRequestNotFound, id)
	}
	delete(s.requests, id)
	delete(s.seqs, id)
	return nil
}

var _ port.RequestRepository = (*RequestStore)(nil)
