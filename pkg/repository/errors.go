package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgDuplicateKeyCode = "23505"

// Errors names the domain errors MapError substitutes for driver errors.
// A nil field leaves that class of error unchanged.
type Errors struct {
	NotFound    error
	Duplicate   error
	Unavailable error
}

// MapError translates database errors to domain errors.
// sql.ErrNoRows maps to NotFound, a unique violation (23505) to Duplicate,
// and connection or timeout failures to Unavailable. Other errors are returned unchanged.
func MapError(err error, domain Errors) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return pick(domain.NotFound, err)
	case isDuplicate(err):
		return pick(domain.Duplicate, err)
	case isUnavailable(err):
		return pick(domain.Unavailable, err)
	}
	return err
}

func pick(domainErr, err error) error {
	if domainErr == nil {
		return err
	}
	return domainErr
}

func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgDuplicateKeyCode
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) ||
		pgconn.Timeout(err) {
		return true
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
