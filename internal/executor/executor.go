// Package executor runs the single query the harness exists for.
package executor

import (
	"context"
	"errors"

	"github.com/mickamy/fetchmany-repro/internal/config"
	"github.com/mickamy/fetchmany-repro/internal/logging"
	"github.com/mickamy/fetchmany-repro/internal/model"
	"github.com/mickamy/fetchmany-repro/orm"
	"github.com/mickamy/fetchmany-repro/scope"
)

// SessionSource hands out a new session per call.
type SessionSource interface {
	GetNewSession(ctx context.Context) (*orm.Session, error)
}

// TestQueryExecutor loads the active users with their addresses.
type TestQueryExecutor struct {
	sessions SessionSource
	strategy string
	log      logging.Logger
}

// New returns an executor loading the Addresses collection with strategy
// (config.StrategyJoin or config.StrategyBatch).
func New(sessions SessionSource, strategy string, loggers logging.Factory) *TestQueryExecutor {
	return &TestQueryExecutor{
		sessions: sessions,
		strategy: strategy,
		log:      loggers.CreateLogger("Executor"),
	}
}

// PerformTest runs the query once and discards the result. The session
// is released on every path; errors are returned as they surfaced.
func (e *TestQueryExecutor) PerformTest(ctx context.Context) error {
	_, err := e.run(ctx)
	return err
}

func (e *TestQueryExecutor) run(ctx context.Context) (users []model.User, err error) {
	sess, err := e.sessions.GetNewSession(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	q := model.Users(sess).Scopes(scope.NotDeleted("IsDeleted"))
	switch e.strategy {
	case config.StrategyBatch:
		q = q.Preload("Addresses")
	default:
		q = q.FetchMany("Addresses")
	}

	e.log.Log(logging.Information, nil, "loading active users with addresses (%s fetch)", e.strategyName())
	users, err = q.All(ctx)
	if err != nil {
		e.log.Log(logging.Error, err, "query failed")
		return nil, err
	}
	e.log.Log(logging.Information, nil, "loaded %d users", len(users))
	return users, nil
}

func (e *TestQueryExecutor) strategyName() string {
	if e.strategy == config.StrategyBatch {
		return config.StrategyBatch
	}
	return config.StrategyJoin
}
