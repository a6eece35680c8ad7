package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/barcodegen/internal/models"
	"github.com/desertthunder/barcodegen/internal/shared"
	"github.com/jmoiron/sqlx"
)

var _ models.CounterStore = (*CounterRepository)(nil)

// CounterRepository implements [models.CounterStore] on the counters table.
type CounterRepository struct {
	db *sqlx.DB
}

type counterRow struct {
	ProductCode string `db:"product_code"`
	LastNumber  int    `db:"last_number"`
	IssuedCount int    `db:"issued_count"`
}

// NewCounterRepository creates a new [CounterRepository] with the given database connection
func NewCounterRepository(db *sql.DB) *CounterRepository {
	return &CounterRepository{db: sqlx.NewDb(db, "sqlite3")}
}

// Get returns the counter for productCode, or a zero counter when no row exists.
func (r *CounterRepository) Get(ctx context.Context, productCode string) (models.Counter, error) {
	var row counterRow
	err := r.db.GetContext(ctx, &row, `
		SELECT product_code, last_number, issued_count
		FROM counters
		WHERE product_code = ?
	`, productCode)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Counter{}, nil
	}
	if err != nil {
		return models.Counter{}, fmt.Errorf("%w: failed to query counter %s: %v", shared.ErrPersistence, productCode, err)
	}

	return models.Counter{LastNumber: row.LastNumber, IssuedCount: row.IssuedCount}, nil
}

// Set writes both counter values for productCode in one statement.
func (r *CounterRepository) Set(ctx context.Context, productCode string, counter models.Counter) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO counters (product_code, last_number, issued_count, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (product_code) DO UPDATE SET
			last_number = excluded.last_number,
			issued_count = excluded.issued_count,
			updated_at = excluded.updated_at
	`, productCode, counter.LastNumber, counter.IssuedCount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: failed to write counter %s: %v", shared.ErrPersistence, productCode, err)
	}
	return nil
}

// List returns every stored counter keyed by product code, including codes no longer in the catalog.
func (r *CounterRepository) List(ctx context.Context) (map[string]models.Counter, error) {
	var rows []counterRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT product_code, last_number, issued_count
		FROM counters
		ORDER BY product_code ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list counters: %v", shared.ErrPersistence, err)
	}

	counters := make(map[string]models.Counter, len(rows))
	for _, row := range rows {
		counters[row.ProductCode] = models.Counter{LastNumber: row.LastNumber, IssuedCount: row.IssuedCount}
	}
	return counters, nil
}
