package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/barcodegen/internal/models"
	"github.com/desertthunder/barcodegen/internal/shared"
	"github.com/jmoiron/sqlx"
)

var _ models.BatchStore = (*BatchRepository)(nil)

// BatchRepository implements [models.BatchStore] on the batches table.
//
// Codes are stored newline separated in a single column; codes never contain newlines.
type BatchRepository struct {
	db *sqlx.DB
}

type batchRow struct {
	ID          string    `db:"id"`
	Sequence    int       `db:"sequence"`
	ProductCode string    `db:"product_code"`
	ProductName string    `db:"product_name"`
	FirstNumber int       `db:"first_number"`
	LastNumber  int       `db:"last_number"`
	Quantity    int       `db:"quantity"`
	Codes       string    `db:"codes"`
	Company     string    `db:"company"`
	Count       string    `db:"unit_count"`
	Lot         string    `db:"lot"`
	Date        string    `db:"label_date"`
	CreatedAt   time.Time `db:"created_at"`
}

// NewBatchRepository creates a new [BatchRepository] with the given database connection
func NewBatchRepository(db *sql.DB) *BatchRepository {
	return &BatchRepository{db: sqlx.NewDb(db, "sqlite3")}
}

// Record inserts batch, assigning an ID when it has none.
func (r *BatchRepository) Record(ctx context.Context, batch *models.Batch) error {
	if batch == nil || len(batch.Codes) == 0 {
		return fmt.Errorf("%w: empty batch", shared.ErrValidation)
	}
	if batch.ID == "" {
		batch.ID = shared.GenerateID()
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", shared.ErrPersistence, err)
	}
	defer tx.Rollback()

	sequence, err := NextSequence(ctx, tx, "batches")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batches (
			id, sequence, product_code, product_name, first_number, last_number, quantity, codes,
			company, unit_count, lot, label_date, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, batch.ID, sequence, batch.ProductCode, batch.ProductName, batch.First, batch.Last, len(batch.Codes),
		strings.Join(batch.Codes, "\n"), batch.Request.Company, batch.Request.Count, batch.Request.Lot,
		batch.Request.Date, batch.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to insert batch: %v", shared.ErrPersistence, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit batch: %v", shared.ErrPersistence, err)
	}
	return nil
}

// List returns the most recent batches first, optionally filtered by product code.
//
// A limit of zero or less returns every batch.
func (r *BatchRepository) List(ctx context.Context, productCode string, limit int) ([]*models.Batch, error) {
	query := `
		SELECT id, sequence, product_code, product_name, first_number, last_number, quantity, codes,
			company, unit_count, lot, label_date, created_at
		FROM batches
	`
	args := []any{}

	if productCode != "" {
		query += " WHERE product_code = ?"
		args = append(args, productCode)
	}

	query += " ORDER BY sequence DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows []batchRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: failed to query batches: %v", shared.ErrPersistence, err)
	}

	batches := make([]*models.Batch, 0, len(rows))
	for _, row := range rows {
		batches = append(batches, &models.Batch{
			ID:          row.ID,
			ProductCode: row.ProductCode,
			ProductName: row.ProductName,
			First:       row.FirstNumber,
			Last:        row.LastNumber,
			Codes:       strings.Split(row.Codes, "\n"),
			Request: models.Request{
				ProductCode: row.ProductCode,
				Quantity:    row.Quantity,
				Company:     row.Company,
				Count:       row.Count,
				Lot:         row.Lot,
				Date:        row.Date,
			},
			CreatedAt: row.CreatedAt,
		})
	}
	return batches, nil
}
