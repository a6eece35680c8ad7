package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/barcodegen/internal/models"
	"github.com/desertthunder/barcodegen/internal/shared"
)

// CounterLister is implemented by stores that can enumerate every counter they hold.
type CounterLister interface {
	List(ctx context.Context) (map[string]models.Counter, error)
}

// Stores bundles the persistence selected by [shared.DatabaseConfig].
//
// Batches is nil for drivers without history support.
type Stores struct {
	Counters models.CounterStore
	Batches  models.BatchStore
	closers  []func() error
}

// Open builds the stores for cfg.Driver, running migrations for sqlite.
func Open(cfg shared.DatabaseConfig) (*Stores, error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := shared.NewDatabase(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrPersistence, err)
		}

		maxOpen, maxIdle := cfg.MaxOpenConns, cfg.MaxIdleConns
		if cfg.Path == ":memory:" {
			maxOpen, maxIdle = 1, 1
		}
		if maxOpen > 0 {
			shared.ConfigureDatabase(db, maxOpen, maxIdle)
		}

		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %v", shared.ErrPersistence, err)
		}

		return &Stores{
			Counters: NewCounterRepository(db),
			Batches:  NewBatchRepository(db),
			closers:  []func() error{db.Close},
		}, nil
	case "pebble":
		kv, err := OpenKVCounterStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return &Stores{Counters: kv, closers: []func() error{kv.Close}}, nil
	case "memory":
		return &Stores{Counters: NewMemoryCounterStore()}, nil
	default:
		return nil, fmt.Errorf("%w: unknown database driver %q", shared.ErrInvalidConfig, cfg.Driver)
	}
}

// ListCounters enumerates stored counters when the counter store supports it.
func (s *Stores) ListCounters(ctx context.Context) (map[string]models.Counter, error) {
	lister, ok := s.Counters.(CounterLister)
	if !ok {
		return nil, fmt.Errorf("%w: counter store cannot list counters", shared.ErrNotImplemented)
	}
	return lister.List(ctx)
}

// Close releases every underlying handle.
func (s *Stores) Close() error {
	var errs []error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
