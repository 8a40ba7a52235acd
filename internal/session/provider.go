// Package session opens ORM sessions against the reproduction database.
package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mickamy/fetchmany-repro/internal/config"
	"github.com/mickamy/fetchmany-repro/internal/logging"
	"github.com/mickamy/fetchmany-repro/internal/model"
	"github.com/mickamy/fetchmany-repro/internal/ormlog"
	"github.com/mickamy/fetchmany-repro/orm"
)

// Provider builds a new session factory and session on every call.
type Provider struct {
	cfg     *config.Config
	loggers logging.Factory
	log     logging.Logger
	conn    *connection
}

// Option configures a Provider.
type Option func(*Provider)

// WithConnection makes the provider connect through driver and dsn
// instead of building a connection string from the configuration.
func WithConnection(driver, dsn string) Option {
	return func(p *Provider) {
		p.conn = &connection{driver: driver, dsn: dsn, release: func() error { return nil }}
	}
}

// NewProvider returns a Provider for cfg. ORM diagnostics are routed to
// loggers when cfg.ORMLogging is set.
func NewProvider(cfg *config.Config, loggers logging.Factory, opts ...Option) *Provider {
	p := &Provider{
		cfg:     cfg,
		loggers: loggers,
		log:     loggers.CreateLogger("Session.Provider"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetNewSession installs the ORM logging backend, builds a session
// factory and opens a session on it. The session owns the factory:
// closing the session releases the connection pool too.
func (p *Provider) GetNewSession(ctx context.Context) (*orm.Session, error) {
	if p.cfg.ORMLogging {
		orm.SetLoggerFactory(ormlog.NewFactory(p.loggers))
	} else {
		orm.SetLoggerFactory(nil)
	}

	d, err := orm.DialectByName(p.cfg.Dialect)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	conn := p.conn
	if conn == nil {
		if conn, err = newConnection(p.cfg, p.loggers); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
	}

	factory, err := orm.BuildSessionFactory(orm.Config{
		Driver:    conn.driver,
		DSN:       conn.dsn,
		Dialect:   d,
		Isolation: sql.LevelReadCommitted,
		Mappings:  model.Mappings(),
	})
	if err != nil {
		_ = conn.release()
		return nil, fmt.Errorf("session: build factory: %w", err)
	}
	factory.OnClose(conn.release)

	p.log.Log(logging.Debug, nil, "opening session on %s database %s at %s", d.Name(), p.cfg.Name, p.cfg.Host)
	sess, err := factory.OpenSession(ctx, orm.OwnFactory())
	if err != nil {
		_ = factory.Close()
		return nil, fmt.Errorf("session: %w", err)
	}
	return sess, nil
}
