package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// NextSequence increments and returns the next sequence number for the given table inside tx.
//
// Sequence numbers give batches a stable, human-readable order (batch #42) independent of UUIDs.
func NextSequence(ctx context.Context, tx *sqlx.Tx, table string) (int, error) {
	sequenceTable := table + "_sequence"

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable)); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	if err := tx.GetContext(ctx, &sequence, fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)); err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	return sequence, nil
}
