package config

import (
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Clarify   ClarifyConfig   `yaml:"clarify"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Planner   PlannerConfig   `yaml:"planner"`
}

type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// DatabaseConfig holds the API-key store connection. An empty host disables
// the database and the server runs in open mode.
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

func (d DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + strconv.Itoa(d.Port) + "/" + d.Name + "?sslmode=disable"
}

func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// RedisConfig backs the session store, the rate limiter, and the API-key
// cache. An empty address list selects the in-memory fallbacks.
type RedisConfig struct {
	Addresses []string `yaml:"addresses"`
	Password  string   `yaml:"password"`
	DB        int      `yaml:"db"`
	PoolSize  int      `yaml:"pool_size"`
}

func (r RedisConfig) Enabled() bool {
	return len(r.Addresses) > 0
}

type TelemetryConfig struct {
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	ErrorBuffer   int    `yaml:"error_buffer"`
	AuditBuffer   int    `yaml:"audit_buffer"`
	SnapshotLimit int    `yaml:"snapshot_limit"`
}

type ClarifyConfig struct {
	MaxRounds  int           `yaml:"max_rounds"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type RateLimitConfig struct {
	Quota  int64         `yaml:"quota"`
	Window time.Duration `yaml:"window"`
}

type PlannerConfig struct {
	DefaultStrategy string `yaml:"default_strategy"`
	EnableStaged    bool   `yaml:"enable_staged"`
	DefaultCurrency string `yaml:"default_currency"`
	DefaultOrigin   string `yaml:"default_origin"`
	MaxResults      int    `yaml:"max_results"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8080,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     120 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Port:            5432,
			Name:            "atlas",
			User:            "atlas",
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			DB:       0,
			PoolSize: 50,
		},
		Telemetry: TelemetryConfig{
			LogLevel:      "info",
			LogFormat:     "json",
			ErrorBuffer:   200,
			AuditBuffer:   300,
			SnapshotLimit: 50,
		},
		Clarify: ClarifyConfig{
			MaxRounds:  2,
			SessionTTL: 30 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Quota:  10,
			Window: time.Minute,
		},
		Planner: PlannerConfig{
			DefaultStrategy: "sequential",
			EnableStaged:    true,
			DefaultCurrency: "CNY",
			DefaultOrigin:   "Shanghai",
			MaxResults:      5,
		},
	}
}
