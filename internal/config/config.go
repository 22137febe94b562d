package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr       string `env:"HTTP_ADDR" envDefault:":8080"`
	GRPCHealthAddr string `env:"GRPC_HEALTH_ADDR"` // empty disables the gRPC health server

	Env string `env:"ENV" envDefault:"dev"` // "dev" | "prod"

	// Storage
	Store        string        `env:"STORE" envDefault:"sqlite"` // "sqlite" | "postgres" | "memory"
	DBPath       string        `env:"DB_PATH" envDefault:"./data/rollcall.db"`
	PostgresDSN  string        `env:"POSTGRES_DSN"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"3s"`

	// Per-badge serialization
	LockBackend   string        `env:"LOCK_BACKEND" envDefault:"local"` // "local" | "redis" | "postgres"
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	LockTTL       time.Duration `env:"LOCK_TTL" envDefault:"5s"`

	Timezone string `env:"TIMEZONE" envDefault:"UTC"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // "json" | "console"

	// MQTT ingestion is off unless a broker is set.
	MQTTBroker      string `env:"MQTT_BROKER"`
	MQTTClientID    string `env:"MQTT_CLIENT_ID" envDefault:"rollcall-server"`
	MQTTTopicPrefix string `env:"MQTT_TOPIC_PREFIX" envDefault:"rollcall"`

	// Tracing is off unless an OTLP/HTTP endpoint is set.
	OTelEndpoint string `env:"OTEL_ENDPOINT"`

	SeedDev bool `env:"SEED_DEV" envDefault:"false"`

	location *time.Location
}

const prefix = "ROLLCALL_"

// FromEnv reads ROLLCALL_* variables, after loading a .env file from the
// working directory if one exists.
func FromEnv() (Config, error) {
	_ = godotenv.Load()
	return Parse(env.Options{Prefix: prefix})
}

// Parse reads the configuration with opts. Tests pass Environment to avoid
// touching the process environment.
func Parse(opts env.Options) (Config, error) {
	if opts.Prefix == "" {
		opts.Prefix = prefix
	}
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	c.LockBackend = strings.ToLower(strings.TrimSpace(c.LockBackend))

	var errs []error
	if !oneOf(c.Env, "dev", "prod") {
		errs = append(errs, fmt.Errorf("%sENV must be dev or prod, got %q", prefix, c.Env))
	}
	if !oneOf(c.Store, "sqlite", "postgres", "memory") {
		errs = append(errs, fmt.Errorf("%sSTORE must be sqlite, postgres or memory, got %q", prefix, c.Store))
	}
	if !oneOf(c.LockBackend, "local", "redis", "postgres") {
		errs = append(errs, fmt.Errorf("%sLOCK_BACKEND must be local, redis or postgres, got %q", prefix, c.LockBackend))
	}
	if (c.Store == "postgres" || c.LockBackend == "postgres") && c.PostgresDSN == "" {
		errs = append(errs, fmt.Errorf("%sPOSTGRES_DSN is required for the postgres backend", prefix))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%sSTORE_TIMEOUT must be positive", prefix))
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("%sTIMEZONE: %w", prefix, err))
	}
	c.location = loc
	return errors.Join(errs...)
}

// Location is the serving timezone used for calendar dates.
func (c Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
