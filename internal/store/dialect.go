package store

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// Dialect hides the differences between the supported SQL backends.
type Dialect interface {
	// Name is the config value selecting the dialect.
	Name() string
	// DriverName is the database/sql driver name.
	DriverName() string
	// DSN builds the data source name from the connection config.
	DSN(cfg DBConfig) (string, error)
	// RewriteQuery converts ? placeholders when the driver needs another syntax.
	RewriteQuery(query string) string
	// SupportsLastInsertID is false when inserts need RETURNING id.
	SupportsLastInsertID() bool
	// Configure applies pool and session settings after opening.
	Configure(db *sql.DB) error
	// Goose is the migration dialect.
	Goose() goose.Dialect
	// MigrationsSubdir names the embedded migration set.
	MigrationsSubdir() string
	// Upsert builds an insert that overwrites cols when key already exists.
	Upsert(table, key string, cols []string) string
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", "sqlite", "sqlite3":
		return sqliteDialect{}, nil
	case "postgres", "postgresql", "pgx":
		return postgresDialect{}, nil
	case "mysql":
		return mysqlDialect{}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", name)
}

var placeholderRegexp = regexp.MustCompile(`\?`)

func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// onConflictUpsert is shared by sqlite and postgres.
func onConflictUpsert(table, key string, cols []string) string {
	all := append([]string{key}, cols...)
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = excluded.%s", c, c)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		table, strings.Join(all, ", "), placeholders(len(all)), key, strings.Join(sets, ", "))
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string       { return "sqlite" }
func (sqliteDialect) DriverName() string { return "sqlite3" }

func (sqliteDialect) DSN(cfg DBConfig) (string, error) {
	if cfg.Path == "" {
		return "", fmt.Errorf("sqlite: database path is required")
	}
	return cfg.Path + "?_foreign_keys=on&_busy_timeout=5000", nil
}

func (sqliteDialect) RewriteQuery(query string) string { return query }
func (sqliteDialect) SupportsLastInsertID() bool       { return true }

func (sqliteDialect) Configure(db *sql.DB) error {
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return err
	}
	return nil
}

func (sqliteDialect) Goose() goose.Dialect     { return goose.DialectSQLite3 }
func (sqliteDialect) MigrationsSubdir() string { return "sqlite" }
func (sqliteDialect) Upsert(table, key string, cols []string) string {
	return onConflictUpsert(table, key, cols)
}

type postgresDialect struct{}

func (postgresDialect) Name() string       { return "postgres" }
func (postgresDialect) DriverName() string { return "pgx" }

func (postgresDialect) DSN(cfg DBConfig) (string, error) {
	if cfg.URL == "" {
		return "", fmt.Errorf("postgres: database url is required")
	}
	return cfg.URL, nil
}

func (postgresDialect) RewriteQuery(query string) string {
	return rewritePlaceholdersToNumbered(query)
}

func (postgresDialect) SupportsLastInsertID() bool { return false }

func (postgresDialect) Configure(db *sql.DB) error {
	db.SetMaxOpenConns(5)
	return nil
}

func (postgresDialect) Goose() goose.Dialect     { return goose.DialectPostgres }
func (postgresDialect) MigrationsSubdir() string { return "postgres" }
func (postgresDialect) Upsert(table, key string, cols []string) string {
	return onConflictUpsert(table, key, cols)
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string       { return "mysql" }
func (mysqlDialect) DriverName() string { return "mysql" }

// DSN accepts a go-sql-driver DSN and forces parseTime and UTC so DATETIME
// columns scan into time.Time.
func (mysqlDialect) DSN(cfg DBConfig) (string, error) {
	if cfg.URL == "" {
		return "", fmt.Errorf("mysql: database url is required")
	}
	mc, err := mysql.ParseDSN(cfg.URL)
	if err != nil {
		return "", fmt.Errorf("mysql: parse dsn: %w", err)
	}
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN(), nil
}

func (mysqlDialect) RewriteQuery(query string) string { return query }
func (mysqlDialect) SupportsLastInsertID() bool       { return true }

func (mysqlDialect) Configure(db *sql.DB) error {
	db.SetMaxOpenConns(5)
	return nil
}

func (mysqlDialect) Goose() goose.Dialect     { return goose.DialectMySQL }
func (mysqlDialect) MigrationsSubdir() string { return "mysql" }

func (mysqlDialect) Upsert(table, key string, cols []string) string {
	all := append([]string{key}, cols...)
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = VALUES(%s)", c, c)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s",
		table, strings.Join(all, ", "), placeholders(len(all)), strings.Join(sets, ", "))
}
