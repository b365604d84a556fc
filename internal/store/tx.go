package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// TxFn runs inside a transaction. Returning an error rolls it back.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction runs fn in a transaction, committing on success and rolling
// back on error or panic. A panic is re-raised after the rollback.
func RunInTransaction(ctx context.Context, db *sql.DB, logger *slog.Logger, fn TxFn) error {
	if logger == nil {
		logger = slog.Default()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("failed to roll back transaction after panic",
					slog.String("error", rbErr.Error()),
					slog.Any("panic", p))
			}
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("failed to roll back transaction",
				slog.String("rollback_error", rbErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf("roll back transaction: %v (original error: %w)", rbErr, err)
		}
		logger.Debug("rolled back transaction",
			slog.String("error", err.Error()))
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
