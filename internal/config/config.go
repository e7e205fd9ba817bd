package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Config struct {
	AppPort string `envconfig:"APP_PORT" default:"8080"`
	AppEnv  string `envconfig:"APP_ENV" default:"development"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	DBDriver      string `envconfig:"DB_DRIVER" default:"mysql"`
	MySQLHost     string `envconfig:"MYSQL_HOST" default:"mysql"`
	MySQLPort     string `envconfig:"MYSQL_PORT" default:"3306"`
	MySQLDB       string `envconfig:"MYSQL_DB" default:"compliance"`
	MySQLUser     string `envconfig:"MYSQL_USER" default:"compliance"`
	MySQLPass     string `envconfig:"MYSQL_PASS" default:"compliance"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"compliance.db"`
	DBAutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`

	// RedisAddr empty disables idempotency, the event queue and the worker.
	RedisAddr string        `envconfig:"REDIS_ADDR" default:"redis:6379"`
	RedisDB   int           `envconfig:"REDIS_DB" default:"0"`
	IdempTTL  time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"5m"`

	SweepCron         string `envconfig:"SWEEP_CRON" default:"@every 1h"`
	SweepBatchSize    int    `envconfig:"SWEEP_BATCH_SIZE" default:"200"`
	NotifyQueue       string `envconfig:"NOTIFY_QUEUE" default:"compliance"`
	WorkerConcurrency int    `envconfig:"WORKER_CONCURRENCY" default:"5"`
	// EmbedWorker runs the worker inside the API process.
	EmbedWorker bool `envconfig:"EMBED_WORKER" default:"false"`
	// WorkerMetricsAddr is where cmd/worker serves /metrics; empty disables it.
	WorkerMetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`

	CatalogFile string `envconfig:"CATALOG_FILE" default:"configs/catalog.yaml"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.SweepBatchSize <= 0 {
		return fmt.Errorf("SWEEP_BATCH_SIZE must be positive, got %d", c.SweepBatchSize)
	}
	if c.WorkerConcurrency <= 0 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive, got %d", c.WorkerConcurrency)
	}
	if c.NotifyQueue == "" {
		return errors.New("missing NOTIFY_QUEUE")
	}
	return nil
}

func (c *Config) IsProduction() bool { return c != nil && c.AppEnv == "production" }

// RedisEnabled reports whether Redis-backed features should be wired.
func (c *Config) RedisEnabled() bool { return c.RedisAddr != "" }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME; loc=UTC keeps expiry comparisons in one zone
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
