package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DBConfig selects and locates the relational database.
type DBConfig struct {
	Driver string
	Path   string
	URL    string
}

// DB is a database handle bound to its dialect.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects to the configured database and applies pending migrations.
func Open(ctx context.Context, cfg DBConfig, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	if dialect.Name() == "sqlite" && cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn, err := dialect.DSN(cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{DB: sqlDB, Dialect: dialect}

	if err := Migrate(ctx, db, logger); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if err := dialect.Configure(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("configure database: %w", err)
	}

	logger.Debug("database ready",
		slog.String("driver", dialect.Name()))
	return db, nil
}

// DBTX is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// querier rewrites placeholders before delegating to a DBTX.
type querier struct {
	conn    DBTX
	dialect Dialect
}

func (q querier) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.conn.ExecContext(ctx, q.dialect.RewriteQuery(query), args...)
}

func (q querier) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.conn.QueryContext(ctx, q.dialect.RewriteQuery(query), args...)
}

func (q querier) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.conn.QueryRowContext(ctx, q.dialect.RewriteQuery(query), args...)
}

// execReturningID runs an INSERT and returns the new row id, using RETURNING
// on drivers without LastInsertId.
func (q querier) execReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	if q.dialect.SupportsLastInsertID() {
		res, err := q.exec(ctx, query, args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	query = strings.TrimSuffix(strings.TrimSpace(query), ";") + " RETURNING id"
	var id int64
	if err := q.queryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
