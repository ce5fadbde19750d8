// Package config builds runtime configuration from environment variables so
// main stays lean. Every knob has a development default; production overrides
// via the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server needs at startup.
type Config struct {
	Addr string

	// AllowedDomain is the single organizational email domain admitted by
	// the identity resolver (e.g. "corp.example").
	AllowedDomain string

	// Timezone is the single time reference used to derive work days for
	// every employee. There is no per-employee zone handling.
	Timezone string

	SessionTTL    time.Duration
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string

	// PostgresDSN selects the Postgres-backed stores when non-empty;
	// otherwise the server runs on in-memory stores.
	PostgresDSN string

	Redis RedisConfig

	// KafkaBrokers enables the Kafka audit sink when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	ShutdownTimeout time.Duration
}

// RedisConfig mirrors the go-redis client options we care about.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:            getEnv("CHECKIN_ADDR", ":8080"),
		AllowedDomain:   getEnv("CHECKIN_ALLOWED_DOMAIN", ""),
		Timezone:        getEnv("CHECKIN_TIMEZONE", "Asia/Bangkok"),
		SessionTTL:      getDuration("CHECKIN_SESSION_TTL", 8*time.Hour),
		JWTSigningKey:   getEnv("CHECKIN_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:       getEnv("CHECKIN_JWT_ISSUER", "checkin"),
		JWTAudience:     getEnv("CHECKIN_JWT_AUDIENCE", "checkin-web"),
		PostgresDSN:     getEnv("CHECKIN_POSTGRES_DSN", ""),
		KafkaTopic:      getEnv("CHECKIN_KAFKA_TOPIC", "checkin.audit"),
		ShutdownTimeout: getDuration("CHECKIN_SHUTDOWN_TIMEOUT", 10*time.Second),
		Redis: RedisConfig{
			URL:          getEnv("CHECKIN_REDIS_URL", ""),
			PoolSize:     getInt("CHECKIN_REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("CHECKIN_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("CHECKIN_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("CHECKIN_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("CHECKIN_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}

	if brokers := os.Getenv("CHECKIN_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}

	return cfg
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if c.AllowedDomain == "" {
		return fmt.Errorf("CHECKIN_ALLOWED_DOMAIN is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("CHECKIN_TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("CHECKIN_SESSION_TTL must be positive")
	}
	return nil
}

// Location resolves the configured timezone. Call Validate first.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
