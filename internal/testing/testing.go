// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/barcodegen/internal/models"
)

// StubCounterStore is a [models.CounterStore] test double backed by a map.
//
// GetErr and SetErr, when set, are returned instead of touching the map.
// Sets counts successful Set calls.
type StubCounterStore struct {
	mu       sync.Mutex
	Counters map[string]models.Counter
	GetErr   error
	SetErr   error
	Sets     int
}

// NewStubCounterStore creates a stub seeded with the given counters.
func NewStubCounterStore(seed map[string]models.Counter) *StubCounterStore {
	counters := make(map[string]models.Counter, len(seed))
	for k, v := range seed {
		counters[k] = v
	}
	return &StubCounterStore{Counters: counters}
}

func (s *StubCounterStore) Get(ctx context.Context, productCode string) (models.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return models.Counter{}, s.GetErr
	}
	return s.Counters[productCode], nil
}

func (s *StubCounterStore) Set(ctx context.Context, productCode string, counter models.Counter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	s.Counters[productCode] = counter
	s.Sets++
	return nil
}

// Snapshot returns the stored counter for productCode.
func (s *StubCounterStore) Snapshot(productCode string) models.Counter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Counters[productCode]
}

// StubBatchStore records batches in memory.
type StubBatchStore struct {
	mu        sync.Mutex
	Batches   []*models.Batch
	RecordErr error
}

func (s *StubBatchStore) Record(ctx context.Context, batch *models.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RecordErr != nil {
		return s.RecordErr
	}
	s.Batches = append(s.Batches, batch)
	return nil
}

func (s *StubBatchStore) List(ctx context.Context, productCode string, limit int) ([]*models.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Batch
	for i := len(s.Batches) - 1; i >= 0; i-- {
		b := s.Batches[i]
		if productCode != "" && b.ProductCode != productCode {
			continue
		}
		out = append(out, b)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
