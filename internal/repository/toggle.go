package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// toggleRow deletes the row matched by deleteQuery, or inserts it with insertQuery
// when nothing was deleted. An advisory lock on lockKey serialises concurrent
// toggles of the same pair, so each call flips the state exactly once.
// Both queries receive the same args. Returns whether the row exists afterwards.
func toggleRow(ctx context.Context, db *sqlx.DB, lockKey, deleteQuery, insertQuery string, args ...interface{}) (bool, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
		return false, fmt.Errorf("acquire toggle lock: %w", err)
	}

	result, err := tx.ExecContext(ctx, deleteQuery, args...)
	if err != nil {
		return false, fmt.Errorf("toggle delete: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}

	if deleted == 0 {
		if _, err := tx.ExecContext(ctx, insertQuery, args...); err != nil {
			return false, fmt.Errorf("toggle insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	return deleted == 0, nil
}
