package persistence

import (
	"errors"
	"strings"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes mapped onto domain errors
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// translateError maps driver errors onto domain errors.
// Unique violations become ALREADY_EXISTS, serialization failures and deadlocks become
// CONCURRENCY_CONFLICT. Anything else is returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return shared.ErrAlreadyExists
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return shared.NewDomainErrorf(shared.CodeConcurrencyConflict,
				"Transaction aborted by a concurrent update: %s", pgErr.Message)
		}
		return err
	}

	// SQLite reports constraint and lock failures only through the message text
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return shared.ErrAlreadyExists
	case strings.Contains(msg, "database is locked"):
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "Database is locked by a concurrent transaction")
	}
	return err
}

// pageOf applies limit and offset for a normalized filter
func pageOf(query *gorm.DB, filter shared.Filter) *gorm.DB {
	return query.Offset(filter.Offset()).Limit(filter.PageSize)
}
