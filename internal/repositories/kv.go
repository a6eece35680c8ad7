package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/pebble"
	"github.com/desertthunder/barcodegen/internal/models"
	"github.com/desertthunder/barcodegen/internal/shared"
)

var _ models.CounterStore = (*KVCounterStore)(nil)

const (
	lastNumberPrefix  = "lastBarcodeNumber-"
	issuedCountPrefix = "barcodeCount-"
)

// KVCounterStore implements [models.CounterStore] on an embedded pebble database.
//
// Layout: "lastBarcodeNumber-<code>" and "barcodeCount-<code>", values are base-10 strings.
type KVCounterStore struct {
	db *pebble.DB
}

// OpenKVCounterStore opens (or creates) the pebble database in dir.
func OpenKVCounterStore(dir string) (*KVCounterStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open counter store %s: %v", shared.ErrPersistence, dir, err)
	}
	return &KVCounterStore{db: db}, nil
}

// Get reads both counter keys; missing keys count as zero.
func (s *KVCounterStore) Get(ctx context.Context, productCode string) (models.Counter, error) {
	last, err := s.readInt(lastNumberPrefix + productCode)
	if err != nil {
		return models.Counter{}, err
	}

	issued, err := s.readInt(issuedCountPrefix + productCode)
	if err != nil {
		return models.Counter{}, err
	}

	return models.Counter{LastNumber: last, IssuedCount: issued}, nil
}

// Set writes both keys in one synced batch.
func (s *KVCounterStore) Set(ctx context.Context, productCode string, counter models.Counter) error {
	b := s.db.NewBatch()
	defer b.Close()

	if err := b.Set([]byte(lastNumberPrefix+productCode), []byte(strconv.Itoa(counter.LastNumber)), nil); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}
	if err := b.Set([]byte(issuedCountPrefix+productCode), []byte(strconv.Itoa(counter.IssuedCount)), nil); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}

	if err := b.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("%w: failed to commit counter %s: %v", shared.ErrPersistence, productCode, err)
	}
	return nil
}

// List returns every stored counter keyed by product code.
func (s *KVCounterStore) List(ctx context.Context) (map[string]models.Counter, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(lastNumberPrefix),
		UpperBound: []byte(lastNumberPrefix + "\xff"),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}
	defer iter.Close()

	codes := []string{}
	for iter.First(); iter.Valid(); iter.Next() {
		codes = append(codes, strings.TrimPrefix(string(iter.Key()), lastNumberPrefix))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}

	counters := make(map[string]models.Counter, len(codes))
	for _, code := range codes {
		c, err := s.Get(ctx, code)
		if err != nil {
			return nil, err
		}
		counters[code] = c
	}
	return counters, nil
}

// Close flushes and closes the database.
func (s *KVCounterStore) Close() error {
	return s.db.Close()
}

func (s *KVCounterStore) readInt(key string) (int, error) {
	val, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: failed to read %s: %v", shared.ErrPersistence, key, err)
	}
	defer closer.Close()

	n, err := strconv.Atoi(string(val))
	if err != nil {
		return 0, fmt.Errorf("%w: corrupt value for %s: %v", shared.ErrPersistence, key, err)
	}
	return n, nil
}
