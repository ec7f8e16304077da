package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the services react to.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
	CodeNotNullViolation    = "23502"
	CodeStringTooLong       = "22001"
	CodeNumericOverflow     = "22003"
)

// Violation is a constraint error reported by Postgres.
type Violation struct {
	Code       string
	Constraint string
}

// AsViolation extracts the constraint violation behind err, if any.
func AsViolation(err error) (Violation, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return Violation{}, false
	}
	if !strings.HasPrefix(pgErr.Code, "23") {
		return Violation{}, false
	}
	return Violation{Code: pgErr.Code, Constraint: pgErr.ConstraintName}, true
}

// AsDataException returns the Postgres message when err is a class 22 error: a value the
// column type cannot hold, such as an over-long string or an overflowing numeric.
func AsDataException(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || !strings.HasPrefix(pgErr.Code, "22") {
		return "", false
	}
	return pgErr.Message, true
}

// IsUnavailable reports whether err means the database could not be reached or
// gave up on the request, as opposed to rejecting it.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"): // connection exception
			return true
		case pgErr.Code == "57P01", pgErr.Code == "57P02", pgErr.Code == "57P03": // shutdown
			return true
		case pgErr.Code == "53300": // too many connections
			return true
		case pgErr.Code == "57014": // statement timeout
			return true
		}
		return false
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
