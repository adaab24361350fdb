package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/audiokeeper/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// PostgreSQL SQLSTATE codes treated as write conflicts.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// classify maps a storage error onto the service error kinds. Errors that
// already carry a kind pass through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, common.ErrorConflict),
		errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrorInternal):
		return err
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return common.Conflict("record already exists")
		case pgSerializationFailure, pgDeadlockDetected:
			return common.Conflict("concurrent modification, try again")
		}
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		switch {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return common.Conflict("record already exists")
		case code&0xff == sqlite3.SQLITE_BUSY, code&0xff == sqlite3.SQLITE_LOCKED:
			return common.Conflict("concurrent modification, try again")
		}
	}

	return fmt.Errorf("%w: db error: %w", common.ErrorInternal, err)
}
