package session

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"

	"github.com/mickamy/fetchmany-repro/internal/config"
	"github.com/mickamy/fetchmany-repro/internal/logging"
)

// Driver names registered by the imported drivers.
const (
	driverPgx   = "pgx"
	driverMySQL = "mysql"
)

type connection struct {
	driver  string
	dsn     string
	release func() error
}

func newConnection(cfg *config.Config, loggers logging.Factory) (*connection, error) {
	switch cfg.Dialect {
	case config.DialectPostgres:
		connCfg, err := postgresConfig(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.DriverTrace {
			connCfg.Tracer = &tracelog.TraceLog{
				Logger:   newDriverLogger(loggers.CreateLogger("Driver.pgx")),
				LogLevel: tracelogLevel(cfg.Level()),
			}
		}
		name := stdlib.RegisterConnConfig(connCfg)
		return &connection{
			driver: driverPgx,
			dsn:    name,
			release: func() error {
				stdlib.UnregisterConnConfig(name)
				return nil
			},
		}, nil
	case config.DialectMySQL:
		return &connection{
			driver:  driverMySQL,
			dsn:     mysqlConfig(cfg).FormatDSN(),
			release: func() error { return nil },
		}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", cfg.Dialect)
	}
}

func postgresConfig(cfg *config.Config) (*pgx.ConnConfig, error) {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.DatabasePort())),
		Path:   "/" + cfg.Name,
	}
	q := u.Query()
	q.Set("application_name", cfg.ApplicationName)
	q.Set("sslmode", "disable")
	u.RawQuery = q.Encode()

	connCfg, err := pgx.ParseConfig(u.String())
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	return connCfg, nil
}

func mysqlConfig(cfg *config.Config) *mysql.Config {
	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.DatabasePort()))
	c.DBName = cfg.Name
	c.ConnectionAttributes = "program_name:" + cfg.ApplicationName
	return c
}
