package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies the pending migrations of the database's dialect.
func Migrate(ctx context.Context, db *DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	fsys, err := fs.Sub(migrationsFS, "migrations/"+db.Dialect.MigrationsSubdir())
	if err != nil {
		return fmt.Errorf("locate migrations: %w", err)
	}

	provider, err := goose.NewProvider(db.Dialect.Goose(), db.DB, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	for _, r := range results {
		logger.Info("applied migration",
			slog.Int64("version", r.Source.Version),
			slog.String("path", r.Source.Path),
			slog.Duration("duration", r.Duration))
	}
	return nil
}
