package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/garyjia/procurement-hub/internal/application/port"
	"github.com/garyjia/procurement-hub/internal/domain/entity"
)

// VendorStore keeps vendors in process memory
type VendorStore struct {
	mu      sync.RWMutex
	vendors map[string]entity.Vendor
}

// NewVendorStore creates a store holding copies of seed
func NewVendorStore(seed ...*entity.Vendor) *VendorStore {
	s := &VendorStore{vendors: make(map[string]entity.Vendor)}
	for _, v := range seed {
		s.vendors[v.ID] = *v
	}
	return s
}

// List returns vendors ordered by name
func (s *VendorStore) List(ctx context.Context) ([]*entity.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.Vendor, 0, len(s.vendors))
	for _, v := range s.vendors {
		v := v
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Create adds a vendor
func (s *VendorStore) Create(ctx context.Context, v *entity.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.vendors[v.ID]; exists {
		return fmt.Errorf("vendor %s already exists", v.ID)
	}
	s.vendors[v.ID] = *v
	return nil
}

var _ port.VendorRepository = (*VendorStore)(nil)
