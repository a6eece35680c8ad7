package repositories

import (
	"context"
	"maps"
	"sync"

	"github.com/desertthunder/barcodegen/internal/models"
)

var _ models.CounterStore = (*MemoryCounterStore)(nil)

// MemoryCounterStore keeps counters in a map. Nothing survives the process.
type MemoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]models.Counter
}

// NewMemoryCounterStore creates an empty [MemoryCounterStore].
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{counters: make(map[string]models.Counter)}
}

func (s *MemoryCounterStore) Get(ctx context.Context, productCode string) (models.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[productCode], nil
}

func (s *MemoryCounterStore) Set(ctx context.Context, productCode string, counter models.Counter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[productCode] = counter
	return nil
}

// List returns a copy of all counters.
func (s *MemoryCounterStore) List(ctx context.Context) (map[string]models.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.counters), nil
}
