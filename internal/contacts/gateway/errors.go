package gateway

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	dErrors "addressbook/pkg/domain-errors"
	"addressbook/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// classify turns driver constraint failures into coded errors. Anything it
// does not recognise is wrapped with op and left for the caller to treat as
// an internal failure.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if state := sqlState(err); len(state) >= 2 {
		switch {
		case state == uniqueViolation:
			return dErrors.Wrap(fmt.Errorf("%s: %w", op, sentinel.ErrConflict), dErrors.CodeConflict, "contact conflicts with an existing record")
		case state[:2] == "23":
			return dErrors.Wrap(fmt.Errorf("%s: %w", op, err), dErrors.CodeValidation, "contact violates a storage constraint")
		case state[:2] == "22":
			return dErrors.Wrap(fmt.Errorf("%s: %w", op, err), dErrors.CodeValidation, "contact field does not fit the storage format")
		}
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) && liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		if liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return dErrors.Wrap(fmt.Errorf("%s: %w", op, sentinel.ErrConflict), dErrors.CodeConflict, "contact conflicts with an existing record")
		}
		return dErrors.Wrap(fmt.Errorf("%s: %w", op, err), dErrors.CodeValidation, "contact violates a storage constraint")
	}
	return fmt.Errorf("%s: %w", op, err)
}

// sqlState extracts the SQLSTATE reported by either postgres driver.
func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
