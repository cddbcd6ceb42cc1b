// Package repository provides database helper functions for transaction management
// and query execution. Every query helper records a client span on the global tracer.
package repository

import (
	"context"
	"database/sql"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/JaimeStill/lectern/pkg/telemetry"
)

const tracerName = "github.com/JaimeStill/lectern/pkg/repository"

// Querier is implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Executor is implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Scanner abstracts row scanning for use with query helpers.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanFunc converts a Scanner into a typed value.
// Domain packages define their own scan functions for entity types.
type ScanFunc[T any] func(Scanner) (T, error)

// WithTx executes fn within a database transaction.
// It handles Begin, Commit, and Rollback automatically.
func WithTx[T any](ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) (T, error)) (T, error) {
	var zero T

	ctx, span := startSpan(ctx, "db.tx", "")
	defer span.End()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return zero, fail(span, err)
	}
	defer tx.Rollback()

	result, err := fn(tx)
	if err != nil {
		return zero, fail(span, err)
	}

	if err := tx.Commit(); err != nil {
		return zero, fail(span, err)
	}

	return result, nil
}

// QueryOne executes a query expected to return a single row.
func QueryOne[T any](ctx context.Context, q Querier, query string, args []any, scan ScanFunc[T]) (T, error) {
	var zero T

	ctx, span := startSpan(ctx, "db.query_one", query)
	defer span.End()

	row := q.QueryRowContext(ctx, query, args...)
	result, err := scan(row)
	if err != nil {
		return zero, fail(span, err)
	}
	return result, nil
}

// QueryScalar executes a query that returns a single column of a single row,
// such as a COUNT.
func QueryScalar[T any](ctx context.Context, q Querier, query string, args ...any) (T, error) {
	var v T

	ctx, span := startSpan(ctx, "db.query_scalar", query)
	defer span.End()

	if err := q.QueryRowContext(ctx, query, args...).Scan(&v); err != nil {
		return v, fail(span, err)
	}
	return v, nil
}

// QueryMany executes a query expected to return multiple rows.
// Returns an empty slice if no rows are found.
func QueryMany[T any](ctx context.Context, q Querier, query string, args []any, scan ScanFunc[T]) ([]T, error) {
	ctx, span := startSpan(ctx, "db.query_many", query)
	defer span.End()

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fail(span, err)
	}
	defer rows.Close()

	results := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fail(span, err)
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fail(span, err)
	}

	span.SetAttributes(attribute.Int("db.rows", len(results)))
	return results, nil
}

// ExecExpectOne executes a statement expected to affect exactly one row.
// Returns sql.ErrNoRows if no rows were affected.
func ExecExpectOne(ctx context.Context, e Executor, query string, args ...any) error {
	ctx, span := startSpan(ctx, "db.exec_one", query)
	defer span.End()

	result, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return fail(span, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fail(span, err)
	}

	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func startSpan(ctx context.Context, name, query string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("db.system", "postgresql")}
	if query != "" {
		attrs = append(attrs, attribute.String("db.query.text", query))
	}
	return telemetry.Tracer(tracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// fail records err on span unless it is the expected empty-result signal.
func fail(span trace.Span, err error) error {
	if err != sql.ErrNoRows {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
