// Package testutil starts the backing services used by integration tests.
package testutil

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	PostgresDatabase = "testdb"
	PostgresUser     = "testuser"
	PostgresPassword = "testpass"
)

// TestContainers holds the running test containers
type TestContainers struct {
	PostgresContainer testcontainers.Container
	RedisContainer    testcontainers.Container
	PostgresURL       string
	PostgresHost      string
	PostgresPort      int
	RedisHost         string
	RedisPort         int
}

// StartContainers starts postgres and redis
func StartContainers(ctx context.Context) (*TestContainers, error) {
	tc := &TestContainers{}
	if err := tc.startPostgres(ctx); err != nil {
		return nil, err
	}
	if err := tc.startRedis(ctx); err != nil {
		_ = tc.Cleanup(ctx)
		return nil, err
	}
	return tc, nil
}

// StartRedis starts only redis
func StartRedis(ctx context.Context) (*TestContainers, error) {
	tc := &TestContainers{}
	if err := tc.startRedis(ctx); err != nil {
		return nil, err
	}
	return tc, nil
}

// StartPostgres starts only postgres
func StartPostgres(ctx context.Context) (*TestContainers, error) {
	tc := &TestContainers{}
	if err := tc.startPostgres(ctx); err != nil {
		return nil, err
	}
	return tc, nil
}

func (tc *TestContainers) startPostgres(ctx context.Context) error {
	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(PostgresDatabase),
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to start postgres container: %w", err)
	}
	tc.PostgresContainer = pgContainer

	host, port, err := endpoint(ctx, pgContainer, nat.Port("5432/tcp"))
	if err != nil {
		return fmt.Errorf("postgres endpoint: %w", err)
	}
	tc.PostgresHost = host
	tc.PostgresPort = port
	tc.PostgresURL = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		PostgresUser, PostgresPassword, host, port, PostgresDatabase)
	return nil
}

func (tc *TestContainers) startRedis(ctx context.Context) error {
	redisContainer, err := redis.Run(ctx, "redis:7-alpine",
		redis.WithLogLevel(redis.LogLevelDebug),
	)
	if err != nil {
		return fmt.Errorf("failed to start redis container: %w", err)
	}
	tc.RedisContainer = redisContainer

	host, port, err := endpoint(ctx, redisContainer, nat.Port("6379/tcp"))
	if err != nil {
		return fmt.Errorf("redis endpoint: %w", err)
	}
	tc.RedisHost = host
	tc.RedisPort = port
	return nil
}

func endpoint(ctx context.Context, c testcontainers.Container, port nat.Port) (string, int, error) {
	host, err := c.Host(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("failed to get host: %w", err)
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		return "", 0, fmt.Errorf("failed to get port: %w", err)
	}
	n, err := strconv.Atoi(mapped.Port())
	if err != nil {
		return "", 0, fmt.Errorf("invalid mapped port %q: %w", mapped.Port(), err)
	}
	return host, n, nil
}

// Cleanup terminates all containers
func (tc *TestContainers) Cleanup(ctx context.Context) error {
	var errs []error

	if tc.PostgresContainer != nil {
		if err := tc.PostgresContainer.Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to terminate postgres: %w", err))
		}
	}

	if tc.RedisContainer != nil {
		if err := tc.RedisContainer.Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to terminate redis: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}

	return nil
}
