package store

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrDuplicate means a unique constraint rejected the write.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrMissingReference means a foreign key pointed at a missing row.
	ErrMissingReference = errors.New("missing referenced row")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	mysqlDuplicateEntry = 1062
	mysqlNoReferenced   = 1452
)

// mapError converts driver constraint errors into ErrDuplicate or
// ErrMissingReference. Other errors are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %v", ErrMissingReference, err)
		}
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %v", ErrMissingReference, err)
		}
		return err
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		case mysqlNoReferenced:
			return fmt.Errorf("%w: %v", ErrMissingReference, err)
		}
	}
	return err
}
