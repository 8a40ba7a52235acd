package orm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Config describes how a SessionFactory connects and what it maps.
type Config struct {
	Driver    string // database/sql driver name
	DSN       string
	Dialect   Dialect
	Isolation sql.IsolationLevel // used by Session.Transaction
	Mappings  *Mappings
}

// SessionFactory is a connection pool bound to a validated set of mappings.
type SessionFactory struct {
	db       *sql.DB
	d        Dialect
	iso      sql.IsolationLevel
	mappings *Mappings
	release  []func() error
}

// BuildSessionFactory validates cfg and prepares the connection pool.
// No connection is made until a session is opened.
func BuildSessionFactory(cfg Config) (*SessionFactory, error) {
	switch {
	case cfg.Driver == "":
		return nil, fmt.Errorf("%w: driver is required", ErrInvalidConfig)
	case cfg.DSN == "":
		return nil, fmt.Errorf("%w: connection string is required", ErrInvalidConfig)
	case cfg.Dialect == nil:
		return nil, fmt.Errorf("%w: dialect is required", ErrInvalidConfig)
	}
	if err := cfg.Mappings.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	logFor("SessionFactory").infof("built session factory for %d mapped entities (%s, isolation %s)",
		cfg.Mappings.Len(), cfg.Dialect.Name(), cfg.Isolation)

	return &SessionFactory{db: db, d: cfg.Dialect, iso: cfg.Isolation, mappings: cfg.Mappings}, nil
}

// OnClose registers fn to run after the pool is closed.
func (f *SessionFactory) OnClose(fn func() error) {
	f.release = append(f.release, fn)
}

// Mappings returns the mappings the factory was built from.
func (f *SessionFactory) Mappings() *Mappings { return f.mappings }

// Close closes the connection pool.
func (f *SessionFactory) Close() error {
	errs := []error{f.db.Close()}
	for _, fn := range f.release {
		errs = append(errs, fn())
	}
	return errors.Join(errs...)
}

// SessionOption configures OpenSession.
type SessionOption func(*Session)

// OwnFactory makes the session close its factory when the session is closed.
func OwnFactory() SessionOption {
	return func(s *Session) { s.factoryOwned = true }
}

// OpenSession acquires a dedicated connection from the pool.
func (f *SessionFactory) OpenSession(ctx context.Context, opts ...SessionOption) (*Session, error) {
	conn, err := f.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("orm: open session: %w", err)
	}
	s := &Session{conn: conn, factory: f}
	for _, opt := range opts {
		opt(s)
	}
	logFor("Session").debugf("opened session")
	return s, nil
}

// Session is a unit of work on one connection. It allows at most one
// active reader: any command issued while a reader is open closes that
// reader first. A Session is not safe for concurrent use.
type Session struct {
	conn         *sql.Conn
	factory      *SessionFactory
	factoryOwned bool
	active       *cursor
	closed       bool
}

func (s *Session) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	s.interrupt()
	start := now(ctx)
	rows, err := s.conn.QueryContext(ctx, query, args...)
	logStatement(ctx, start, query, args, err)
	return rows, err //nolint:wrapcheck // thin wrapper
}

func (s *Session) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	s.interrupt()
	start := now(ctx)
	res, err := s.conn.ExecContext(ctx, query, args...)
	logStatement(ctx, start, query, args, err)
	return res, err //nolint:wrapcheck // thin wrapper
}

// Transaction executes fn within a transaction using the factory's
// isolation level. If fn returns nil the transaction is committed.
// If fn returns an error or panics the transaction is rolled back.
func (s *Session) Transaction(ctx context.Context, fn func(tx *Tx) error) (err error) {
	if s.closed {
		return ErrSessionClosed
	}
	s.interrupt()
	raw, err := s.conn.BeginTx(ctx, &sql.TxOptions{Isolation: s.factory.iso})
	if err != nil {
		return err //nolint:wrapcheck // thin wrapper
	}
	tx := &Tx{raw: raw, d: s.factory.d}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	err = fn(tx)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool { return s.closed }

// Close releases the connection, and the factory when the session owns it.
// Closing twice is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.active != nil {
		_ = s.active.Close()
	}
	errs := []error{s.conn.Close()}
	if s.factoryOwned {
		errs = append(errs, s.factory.Close())
	}
	logFor("Session").debugf("closed session")
	return errors.Join(errs...)
}

func (s *Session) interrupt() {
	if s.active != nil {
		logFor("Session").debugf("closing active reader before issuing a new command")
		s.active.interrupt()
		s.active = nil
	}
}

func (s *Session) dialect() Dialect { return s.factory.d }

func (s *Session) track(rows *sql.Rows) *cursor {
	c := &cursor{rows: rows, owner: s}
	s.active = c
	return c
}
