package testkit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// container is a running dependency together with the address tests connect to.
type container struct {
	ctr  testcontainers.Container
	addr string
}

func (c *container) terminate(ctx context.Context) error {
	if c == nil || c.ctr == nil {
		return nil
	}
	return c.ctr.Terminate(ctx)
}

func startPostgres(ctx context.Context, cfg *Config) (*container, error) {
	if cfg.PGDSN != "" {
		return &container{addr: cfg.PGDSN}, nil
	}

	ctr, err := postgres.Run(ctx,
		cfg.PGImage,
		postgres.WithDatabase("fxquotes_"+randomSuffix()),
		postgres.WithUsername("fxquotes"),
		postgres.WithPassword("fxquotes"),
		testcontainers.WithWaitStrategyAndDeadline(cfg.StartupTimeout,
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("postgres connection string: %w", err)
	}
	return &container{ctr: ctr, addr: dsn}, nil
}

func startRedis(ctx context.Context, cfg *Config) (*container, error) {
	if cfg.RedisAddr != "" {
		return &container{addr: cfg.RedisAddr}, nil
	}

	ctr, err := tcredis.Run(ctx, cfg.RedisImage)
	if err != nil {
		return nil, fmt.Errorf("start redis container: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("redis connection string: %w", err)
	}
	// go-redis wants host:port, the module returns a redis:// URL.
	u, err := url.Parse(connStr)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("parse redis connection string %q: %w", connStr, err)
	}
	return &container{ctr: ctr, addr: u.Host}, nil
}

func randomSuffix() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "fallback"
	}
	return hex.EncodeToString(b)
}
