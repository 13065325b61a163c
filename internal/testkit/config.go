// Package testkit provides container-backed Postgres and Redis for integration tests.
package testkit

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds environment-driven settings for integration test infrastructure.
type Config struct {
	PGImage        string
	RedisImage     string
	PGDSN          string        // external Postgres; no container is started when set
	RedisAddr      string        // external Redis host:port; no container is started when set
	StartupTimeout time.Duration // how long containers may take to become ready
	KeepContainers bool          // leave containers running after the suite finishes
}

// LoadConfig reads FXQ_TEST_* environment variables.
func LoadConfig() Config {
	return Config{
		PGImage:        env("FXQ_TEST_PG_IMAGE", "postgres:18.1-alpine"),
		RedisImage:     env("FXQ_TEST_REDIS_IMAGE", "redis:8.4.0-alpine"),
		PGDSN:          os.Getenv("FXQ_TEST_PG_DSN"),
		RedisAddr:      os.Getenv("FXQ_TEST_REDIS_ADDR"),
		StartupTimeout: envSeconds("FXQ_TEST_STARTUP_TIMEOUT", 90*time.Second),
		KeepContainers: envBool("FXQ_TEST_KEEP_CONTAINERS"),
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envSeconds accepts a Go duration ("2m") or a plain number of seconds.
func envSeconds(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	fmt.Fprintf(os.Stderr, "testkit: ignoring %s=%q, using %v\n", key, v, def)
	return def
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}
