// Package fakedb is an in-memory database/sql driver that answers
// statements from scripted routes. It lets sessions, queries and the
// reproduction scenarios run without a database server.
package fakedb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

// DriverName is the database/sql driver name registered by this package.
const DriverName = "fakedb"

// ErrNoRoute is returned for statements that no route matches.
var ErrNoRoute = errors.New("fakedb: no route for statement")

// Result is the scripted answer to a statement.
type Result struct {
	Columns      []string
	Rows         [][]driver.Value
	LastInsertID int64
	RowsAffected int64
}

// Responder answers a statement that matched a route.
type Responder func(query string, args []driver.NamedValue) (*Result, error)

// Statement is a statement received by a Server.
type Statement struct {
	SQL  string
	Args []any
}

type route struct {
	fragment string
	respond  Responder
}

// Server holds the routes and the statement log of one fake database.
type Server struct {
	mu         sync.Mutex
	routes     []route
	statements []Statement
	isolations []sql.IsolationLevel
	open       int
}

var (
	servers sync.Map
	seq     atomic.Int64
)

func init() {
	sql.Register(DriverName, fakeDriver{})
}

// New creates a Server and returns it with the DSN that connects to it.
func New() (*Server, string) {
	s := &Server{}
	dsn := fmt.Sprintf("fakedb-%d", seq.Add(1))
	servers.Store(dsn, s)
	return s, dsn
}

// Handle routes every statement containing fragment to respond.
// Routes are tried in registration order; the first match wins.
func (s *Server) Handle(fragment string, respond Responder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = append(s.routes, route{fragment: fragment, respond: respond})
}

// Rows routes statements containing fragment to a fixed result set.
func (s *Server) Rows(fragment string, columns []string, rows ...[]driver.Value) {
	s.Handle(fragment, func(string, []driver.NamedValue) (*Result, error) {
		return &Result{Columns: columns, Rows: rows}, nil
	})
}

// Statements returns every statement received so far.
func (s *Server) Statements() []Statement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Statement(nil), s.statements...)
}

// Isolations returns the isolation level of every transaction begun.
func (s *Server) Isolations() []sql.IsolationLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sql.IsolationLevel(nil), s.isolations...)
}

// OpenConns returns the number of driver connections not yet closed.
func (s *Server) OpenConns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *Server) answer(query string, args []driver.NamedValue) (*Result, error) {
	s.mu.Lock()
	plain := make([]any, len(args))
	for i, a := range args {
		plain[i] = a.Value
	}
	s.statements = append(s.statements, Statement{SQL: query, Args: plain})
	routes := append([]route(nil), s.routes...)
	s.mu.Unlock()

	for _, r := range routes {
		if strings.Contains(query, r.fragment) {
			return r.respond(query, args)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoRoute, query)
}

type fakeDriver struct{}

func (fakeDriver) Open(dsn string) (driver.Conn, error) {
	v, ok := servers.Load(dsn)
	if !ok {
		return nil, fmt.Errorf("fakedb: unknown server %q", dsn)
	}
	s := v.(*Server)
	s.mu.Lock()
	s.open++
	s.mu.Unlock()
	return &conn{srv: s}, nil
}

type conn struct {
	srv    *Server
	closed bool
}

var (
	_ driver.QueryerContext = (*conn)(nil)
	_ driver.ExecerContext  = (*conn)(nil)
	_ driver.ConnBeginTx    = (*conn)(nil)
)

func (c *conn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("fakedb: prepared statements are not supported")
}

func (c *conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.srv.mu.Lock()
	c.srv.open--
	c.srv.mu.Unlock()
	return nil
}

func (c *conn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *conn) BeginTx(_ context.Context, opts driver.TxOptions) (driver.Tx, error) {
	c.srv.mu.Lock()
	c.srv.isolations = append(c.srv.isolations, sql.IsolationLevel(opts.Isolation))
	c.srv.mu.Unlock()
	return tx{}, nil
}

func (c *conn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	res, err := c.srv.answer(query, args)
	if err != nil {
		return nil, err
	}
	return &rows{cols: res.Columns, data: res.Rows}, nil
}

func (c *conn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	res, err := c.srv.answer(query, args)
	if err != nil {
		return nil, err
	}
	return result{lastID: res.LastInsertID, affected: res.RowsAffected}, nil
}

type tx struct{}

func (tx) Commit() error   { return nil }
func (tx) Rollback() error { return nil }

type result struct {
	lastID   int64
	affected int64
}

func (r result) LastInsertId() (int64, error) { return r.lastID, nil }
func (r result) RowsAffected() (int64, error) { return r.affected, nil }

type rows struct {
	cols []string
	data [][]driver.Value
	pos  int
}

func (r *rows) Columns() []string { return r.cols }

func (r *rows) Close() error { return nil }

func (r *rows) Next(dest []driver.Value) error {
	if r.pos >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.pos])
	r.pos++
	return nil
}
