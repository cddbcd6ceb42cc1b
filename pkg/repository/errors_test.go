package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/lectern/pkg/repository"
)

var (
	errNotFound    = errors.New("sermon not found")
	errDuplicate   = errors.New("asset already recorded")
	errUnavailable = errors.New("store unavailable")

	domain = repository.Errors{
		NotFound:    errNotFound,
		Duplicate:   errDuplicate,
		Unavailable: errUnavailable,
	}
)

func TestMapError(t *testing.T) {
	other := errors.New("syntax error")
	fk := &pgconn.PgError{Code: "23503"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("find: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"bad conn", driver.ErrBadConn, errUnavailable},
		{"conn done", sql.ErrConnDone, errUnavailable},
		{"deadline", context.DeadlineExceeded, errUnavailable},
		{"other pg error passes through", fk, fk},
		{"other error passes through", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, domain)
			if got != tt.want {
				t.Errorf("MapError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestMapErrorUnsetFieldsPassThrough(t *testing.T) {
	got := repository.MapError(sql.ErrNoRows, repository.Errors{})
	if got != sql.ErrNoRows {
		t.Errorf("MapError with no domain errors = %v, want sql.ErrNoRows", got)
	}
}
