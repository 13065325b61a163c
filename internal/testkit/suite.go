package testkit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver registration
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fxquotes/internal/repository"
)

// Suite owns the Postgres and Redis used by one integration test binary.
// Setup connects to both and applies the schema migrations.
type Suite struct {
	mu    sync.Mutex
	cfg   Config
	pg    *container
	redis *container
	db    *sql.DB
	rdb   *redis.Client
}

// NewSuite creates a suite configured from the environment.
func NewSuite() *Suite {
	return &Suite{cfg: LoadConfig()}
}

// Setup starts the containers (or uses the external overrides), connects and migrates.
func (s *Suite) Setup(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return errors.New("suite already set up")
	}
	defer func() {
		if err != nil {
			s.teardown(ctx)
		}
	}()

	if s.pg, err = startPostgres(ctx, &s.cfg); err != nil {
		return err
	}
	if s.redis, err = startRedis(ctx, &s.cfg); err != nil {
		return err
	}

	db, err := sql.Open("pgx", s.pg.addr)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	s.db = db
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	if err := repository.RunMigrations(db, zap.NewNop().Sugar()); err != nil {
		return err
	}

	s.rdb = redis.NewClient(&redis.Options{Addr: s.redis.addr})
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Shutdown closes connections and terminates containers unless
// FXQ_TEST_KEEP_CONTAINERS is set.
func (s *Suite) Shutdown(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardown(ctx)
}

func (s *Suite) teardown(ctx context.Context) {
	if s.rdb != nil {
		_ = s.rdb.Close()
		s.rdb = nil
	}
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}

	if s.cfg.KeepContainers {
		if s.pg != nil {
			fmt.Println("keeping postgres:", s.pg.addr)
		}
		if s.redis != nil {
			fmt.Println("keeping redis:", s.redis.addr)
		}
		return
	}
	for name, c := range map[string]*container{"postgres": s.pg, "redis": s.redis} {
		if err := c.terminate(ctx); err != nil {
			fmt.Printf("warning: failed to terminate %s container: %v\n", name, err)
		}
	}
	s.pg, s.redis = nil, nil
}

// DB returns the migrated test database.
func (s *Suite) DB() *sql.DB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db
}

// Redis returns the client for the test Redis instance.
func (s *Suite) Redis() *redis.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rdb
}

// RedisAddr returns the host:port of the test Redis instance.
func (s *Suite) RedisAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.redis == nil {
		return ""
	}
	return s.redis.addr
}

// Reset empties every table and flushes Redis between tests.
func (s *Suite) Reset(ctx context.Context) error {
	if _, err := s.DB().ExecContext(ctx, "TRUNCATE TABLE quotes, rates, currencies CASCADE"); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return s.Redis().FlushDB(ctx).Err()
}

// Run sets the suite up, runs the tests and shuts down. Intended for TestMain.
func (s *Suite) Run(m *testing.M) {
	ctx := context.Background()

	if err := s.Setup(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "integration test setup failed: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	s.Shutdown(ctx)
	os.Exit(code)
}
