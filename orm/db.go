package orm

import (
	"context"
	"database/sql"
	"time"
)

// Querier is the common interface for Session and Tx.
// Query factories accept this so that queries work with both.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	dialect() Dialect
	track(rows *sql.Rows) *cursor
}

// cursor is a result set being read by a terminal method.
// A cursor owned by a Session is interrupted when another command is
// issued on that session; reads after that fail with ErrNoDataPresent.
type cursor struct {
	rows        *sql.Rows
	owner       *Session
	interrupted bool
	err         error
}

func (c *cursor) Next() bool {
	if c.interrupted {
		c.err = ErrNoDataPresent
		return false
	}
	return c.rows.Next()
}

func (c *cursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err() //nolint:wrapcheck // pass through
}

func (c *cursor) Close() error {
	if c.owner != nil && c.owner.active == c {
		c.owner.active = nil
	}
	return c.rows.Close() //nolint:wrapcheck // thin wrapper
}

func (c *cursor) interrupt() {
	c.interrupted = true
	_ = c.rows.Close()
}

// logStatement reports an executed statement on the "SQL" logger.
func logStatement(ctx context.Context, start time.Time, query string, args []any, err error) {
	log := logFor("SQL")
	if err != nil {
		log.errorf(err, "could not execute statement: %s", query)
		return
	}
	log.debugf("%s; %v (%s)", query, args, since(ctx, start))
}

// Tx wraps *sql.Tx with a Dialect and satisfies Querier.
type Tx struct {
	raw *sql.Tx
	d   Dialect
}

func (tx *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := now(ctx)
	rows, err := tx.raw.QueryContext(ctx, query, args...)
	logStatement(ctx, start, query, args, err)
	return rows, err //nolint:wrapcheck // thin wrapper
}

func (tx *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := now(ctx)
	res, err := tx.raw.ExecContext(ctx, query, args...)
	logStatement(ctx, start, query, args, err)
	return res, err //nolint:wrapcheck // thin wrapper
}

// Commit commits the transaction.
func (tx *Tx) Commit() error { return tx.raw.Commit() } //nolint:wrapcheck // thin wrapper

// Rollback rolls back the transaction.
func (tx *Tx) Rollback() error { return tx.raw.Rollback() } //nolint:wrapcheck // thin wrapper

func (tx *Tx) dialect() Dialect { return tx.d }

func (tx *Tx) track(rows *sql.Rows) *cursor { return &cursor{rows: rows} }
