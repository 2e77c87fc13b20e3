package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Bus      BusConfig
	Sales    SalesConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	AllowedOrigins    []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

type DatabaseConfig struct {
	Host             string
	Port             int
	User             string
	Password         string
	Name             string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	TxTimeout        time.Duration
	QueryTimeout     time.Duration
	MaxRetryAttempts int
	AutoMigrate      bool
}

type CacheConfig struct {
	// Path is the badger directory; empty keeps the cache in memory.
	Path            string
	OpTimeout       time.Duration
	MetricsTTL      time.Duration
	SummaryTTL      time.Duration
	DashboardTTL    time.Duration
	AnalyticsTTL    time.Duration
	PredictionTTL   time.Duration
	BreakerFailures uint32
	BreakerOpenFor  time.Duration
}

type BusConfig struct {
	Driver       string
	NATSURL      string
	Buffer       int64
	ClientBuffer int
}

type SalesConfig struct {
	// GrowthFloor bounds the start of the comparison period used for
	// growth; zero means unbounded.
	GrowthFloor time.Time
}

type LogConfig struct {
	Level  string
	Format string
}

const (
	BusDriverChannel = "gochannel"
	BusDriverNATS    = "nats"
)

// Load reads an optional YAML file and lets environment variables override
// every key (server.port -> SERVER_PORT).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isMissingFile(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:              v.GetInt("server.port"),
			ReadTimeout:       v.GetDuration("server.read_timeout"),
			WriteTimeout:      v.GetDuration("server.write_timeout"),
			IdleTimeout:       v.GetDuration("server.idle_timeout"),
			ShutdownTimeout:   v.GetDuration("server.shutdown_timeout"),
			AllowedOrigins:    v.GetStringSlice("server.allowed_origins"),
			RateLimitRequests: v.GetInt("server.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("server.rate_limit_window"),
		},
		Database: DatabaseConfig{
			Host:             v.GetString("db.host"),
			Port:             v.GetInt("db.port"),
			User:             v.GetString("db.user"),
			Password:         v.GetString("db.password"),
			Name:             v.GetString("db.name"),
			MaxOpenConns:     v.GetInt("db.max_open_conns"),
			MaxIdleConns:     v.GetInt("db.max_idle_conns"),
			ConnMaxLifetime:  v.GetDuration("db.conn_max_lifetime"),
			TxTimeout:        v.GetDuration("db.tx_timeout"),
			QueryTimeout:     v.GetDuration("db.query_timeout"),
			MaxRetryAttempts: v.GetInt("db.max_retry_attempts"),
			AutoMigrate:      v.GetBool("db.auto_migrate"),
		},
		Cache: CacheConfig{
			Path:            v.GetString("cache.path"),
			OpTimeout:       v.GetDuration("cache.op_timeout"),
			MetricsTTL:      v.GetDuration("cache.metrics_ttl"),
			SummaryTTL:      v.GetDuration("cache.summary_ttl"),
			DashboardTTL:    v.GetDuration("cache.dashboard_ttl"),
			AnalyticsTTL:    v.GetDuration("cache.analytics_ttl"),
			PredictionTTL:   v.GetDuration("cache.prediction_ttl"),
			BreakerFailures: v.GetUint32("cache.breaker_failures"),
			BreakerOpenFor:  v.GetDuration("cache.breaker_open_for"),
		},
		Bus: BusConfig{
			Driver:       v.GetString("bus.driver"),
			NATSURL:      v.GetString("bus.nats_url"),
			Buffer:       v.GetInt64("bus.buffer"),
			ClientBuffer: v.GetInt("bus.client_buffer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if floor := v.GetString("sales.growth_floor"); floor != "" {
		t, err := time.Parse(time.RFC3339, floor)
		if err != nil {
			return nil, fmt.Errorf("parsing sales.growth_floor: %w", err)
		}
		cfg.Sales.GrowthFloor = t.UTC()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit_requests", 100)
	v.SetDefault("server.rate_limit_window", "1m")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 3306)
	v.SetDefault("db.user", "storepulse")
	v.SetDefault("db.password", "secret")
	v.SetDefault("db.name", "storepulse")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "5m")
	v.SetDefault("db.tx_timeout", "5s")
	v.SetDefault("db.query_timeout", "5s")
	v.SetDefault("db.max_retry_attempts", 3)
	v.SetDefault("db.auto_migrate", true)

	v.SetDefault("cache.path", "")
	v.SetDefault("cache.op_timeout", "200ms")
	v.SetDefault("cache.metrics_ttl", "60s")
	v.SetDefault("cache.summary_ttl", "60s")
	v.SetDefault("cache.dashboard_ttl", "30s")
	v.SetDefault("cache.analytics_ttl", "5m")
	v.SetDefault("cache.prediction_ttl", "1h")
	v.SetDefault("cache.breaker_failures", 5)
	v.SetDefault("cache.breaker_open_for", "30s")

	v.SetDefault("bus.driver", BusDriverChannel)
	v.SetDefault("bus.nats_url", "nats://localhost:4222")
	v.SetDefault("bus.buffer", 256)
	v.SetDefault("bus.client_buffer", 256)

	v.SetDefault("sales.growth_floor", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive, got %d", c.Server.Port)
	}
	if c.Database.MaxRetryAttempts < 1 {
		return fmt.Errorf("db.max_retry_attempts must be at least 1, got %d", c.Database.MaxRetryAttempts)
	}
	if c.Database.TxTimeout <= 0 {
		return errors.New("db.tx_timeout must be positive")
	}
	switch c.Bus.Driver {
	case BusDriverChannel, BusDriverNATS:
	default:
		return fmt.Errorf("bus.driver must be %q or %q, got %q", BusDriverChannel, BusDriverNATS, c.Bus.Driver)
	}
	return nil
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
