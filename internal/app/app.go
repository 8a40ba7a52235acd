// Package app wires configuration, logging, sessions and the executor.
package app

import (
	"io"

	"github.com/mickamy/fetchmany-repro/internal/config"
	"github.com/mickamy/fetchmany-repro/internal/executor"
	"github.com/mickamy/fetchmany-repro/internal/logging"
	"github.com/mickamy/fetchmany-repro/internal/session"
)

// App holds the components of one process run.
type App struct {
	Config   *config.Config
	Loggers  logging.Factory
	Sessions *session.Provider
	Executor *executor.TestQueryExecutor
}

// New builds the components for cfg, writing log records to w.
func New(cfg *config.Config, w io.Writer, opts ...session.Option) *App {
	loggers := logging.NewConsoleFactory(w, cfg.Level())
	sessions := session.NewProvider(cfg, loggers, opts...)
	return &App{
		Config:   cfg,
		Loggers:  loggers,
		Sessions: sessions,
		Executor: executor.New(sessions, cfg.FetchStrategy, loggers),
	}
}
