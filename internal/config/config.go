// Package config reads the harness settings from the environment.
// Every variable defaults to the fixed value the reproduction is built
// around, so an empty environment runs the failing scenario.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/mickamy/fetchmany-repro/internal/logging"
)

var ErrEnvVariablesNotValid = errors.New("environment variables not valid")

const (
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
)

// Fetch strategies for the Addresses collection.
const (
	StrategyJoin  = "join"
	StrategyBatch = "batch"
)

type Config struct {
	Dialect         string `env:"DB_DIALECT" envDefault:"postgres"`
	Host            string `env:"DB_HOST" envDefault:"sqlserver"`
	Port            int    `env:"DB_PORT" envDefault:"0"`
	Name            string `env:"DB_NAME" envDefault:"TestDb"`
	User            string `env:"DB_USER" envDefault:"sa"`
	Password        string `env:"DB_PASSWORD" envDefault:"SApassword123__"`
	ApplicationName string `env:"DB_APPLICATION_NAME" envDefault:"TestQueryExecutor"`
	DriverTrace     bool   `env:"DB_DRIVER_TRACE" envDefault:"false"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"Trace"`
	ORMLogging      bool   `env:"ORM_LOGGING" envDefault:"true"`
	FetchStrategy   string `env:"FETCH_STRATEGY" envDefault:"join"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEnvVariablesNotValid, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnvVariablesNotValid, err)
	}
	return &cfg, nil
}

// Default returns the configuration of an empty environment.
func Default() *Config {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: map[string]string{}})
	if err != nil {
		panic(err)
	}
	return &cfg
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dialect, validation.Required, validation.In(DialectPostgres, DialectMySQL)),
		validation.Field(&c.Host, validation.Required, is.Host),
		validation.Field(&c.Port, validation.Min(0), validation.Max(65535)),
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.User, validation.Required),
		validation.Field(&c.ApplicationName, validation.Required),
		validation.Field(&c.LogLevel, validation.Required, validation.By(validateLevel)),
		validation.Field(&c.FetchStrategy, validation.Required, validation.In(StrategyJoin, StrategyBatch)),
	)
}

func validateLevel(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if _, err := logging.ParseLevel(s); err != nil {
		return validation.NewError("validation_invalid_level", "must be a log level name")
	}
	return nil
}

// Level returns the parsed minimum log level. Call it on a validated Config.
func (c *Config) Level() logging.Level {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return logging.Trace
	}
	return level
}

// DatabasePort returns Port, or the default port of the dialect when Port is 0.
func (c *Config) DatabasePort() int {
	if c.Port != 0 {
		return c.Port
	}
	if c.Dialect == DialectMySQL {
		return 3306
	}
	return 5432
}
