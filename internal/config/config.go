package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/waterbills/waterbills/internal/types"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Jobs       JobsConfig       `validate:"required"`
	Scheduler  SchedulerConfig  `validate:"required"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	// AutoMigrate runs schema migration at startup. Intended for local mode.
	AutoMigrate bool
}

// DSN returns the postgres connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// JobsConfig controls the job queue retry/backoff policy applied by the
// message router before a job is surfaced as a terminal failure.
type JobsConfig struct {
	MaxRetries      int           `validate:"min=0"`
	InitialInterval time.Duration `validate:"min=0"`
	MaxInterval     time.Duration `validate:"min=0"`
	Multiplier      float64
	MaxElapsedTime  time.Duration
	// HandlerTimeout bounds a single job handler invocation. A handler that
	// exceeds it is treated as failed and retried under the backoff policy.
	HandlerTimeout time.Duration
}

// SchedulerConfig controls the tick-driven trigger that enqueues billing
// jobs. Hours are in UTC; the timer mechanism itself is swappable in code.
type SchedulerConfig struct {
	Enabled bool
	// TickInterval is how often the scheduler checks whether a trigger is due.
	TickInterval time.Duration
	// GenerationDay is the day of month on which next period's invoices are
	// generated for every building.
	GenerationDay  int `validate:"min=1,max=31"`
	GenerationHour int `validate:"min=0,max=23"`
	// PenaltyHour is the UTC hour of the daily penalty recomputation run.
	PenaltyHour int `validate:"min=0,max=23"`
	// DisconnectHour is the UTC hour of the daily disconnection evaluation.
	DisconnectHour int `validate:"min=0,max=23"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/waterbills")

	v.SetEnvPrefix("WATERBILLS")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "waterbills")
	v.SetDefault("postgres.dbname", "waterbills")
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("jobs.maxretries", 3)
	v.SetDefault("jobs.initialinterval", 5*time.Second)
	v.SetDefault("jobs.maxinterval", 2*time.Minute)
	v.SetDefault("jobs.multiplier", 2.0)
	v.SetDefault("jobs.maxelapsedtime", 15*time.Minute)
	v.SetDefault("jobs.handlertimeout", 5*time.Minute)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.tickinterval", time.Minute)
	// Invoices for the next period are generated on the 25th shortly after
	// midnight; penalties recompute at midnight and disconnections at 06:00.
	v.SetDefault("scheduler.generationday", 25)
	v.SetDefault("scheduler.generationhour", 0)
	v.SetDefault("scheduler.penaltyhour", 0)
	v.SetDefault("scheduler.disconnecthour", 6)
}

func (c *Configuration) Validate() error {
	return validator.New().Struct(c)
}
