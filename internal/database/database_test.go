package database

import (
	"context"
	"testing"
	"time"

	"cine-pos/internal/config"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) config.DatabaseConfig {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "postgres",
		Password:        "postgres",
		Database:        "testdb",
		MaxConnections:  5,
		MinConnections:  1,
		MaxConnLifetime: 300,
	}
}

func TestNewPool_Success(t *testing.T) {
	cfg := startPostgres(t)
	ctx := context.Background()

	pool, err := NewPool(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer pool.Close()

	assert.NoError(t, pool.Ping(ctx))
	assert.Equal(t, int32(5), pool.Config().MaxConns)
}

func TestNewPoolConfig(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host: "db.internal", Port: 5433, User: "pos", Password: "secret", Database: "cinepos",
		MaxConnections: 12, MinConnections: 3, MaxConnLifetime: 120,
	}

	poolConfig, err := newPoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(12), poolConfig.MaxConns)
	assert.Equal(t, int32(3), poolConfig.MinConns)
	assert.Equal(t, 2*time.Minute, poolConfig.MaxConnLifetime)
	assert.Equal(t, "UTC", poolConfig.ConnConfig.RuntimeParams["timezone"])
	assert.Equal(t, "cine-pos", poolConfig.ConnConfig.RuntimeParams["application_name"])
	assert.NotNil(t, poolConfig.AfterConnect)
}

func TestNewPool_NumericAsDecimal(t *testing.T) {
	cfg := startPostgres(t)
	ctx := context.Background()

	pool, err := NewPool(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer pool.Close()

	var got decimal.Decimal
	err = pool.QueryRow(ctx, "SELECT $1::numeric(10,2)", decimal.RequireFromString("7.225")).Scan(&got)
	require.NoError(t, err)
	assert.Equal(t, "7.23", got.StringFixed(2))

	var zone string
	require.NoError(t, pool.QueryRow(ctx, "SHOW timezone").Scan(&zone))
	assert.Equal(t, "UTC", zone)
}

func TestNewPool_Errors(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.DatabaseConfig
		errMatch string
	}{
		{
			name: "Cannot connect to database",
			cfg: config.DatabaseConfig{
				Host: "127.0.0.1", Port: 1, User: "postgres", Database: "testdb",
				MaxConnections: 1, MinConnections: 1,
			},
			errMatch: "failed to ping database",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			pool, err := NewPool(ctx, tt.cfg, zerolog.Nop())

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMatch)
			assert.Nil(t, pool)
		})
	}
}

func TestMigrate_IsIdempotent(t *testing.T) {
	cfg := startPostgres(t)
	ctx := context.Background()

	pool, err := NewPool(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, Migrate(ctx, pool, zerolog.Nop()))
	require.NoError(t, Migrate(ctx, pool, zerolog.Nop()))

	var count int
	err = pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_name IN ('films', 'rooms', 'showtimes', 'products', 'offers', 'customers', 'orders', 'order_items')
	`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 8, count)
}

func TestSchema_Embedded(t *testing.T) {
	assert.Contains(t, Schema(), "CREATE TABLE IF NOT EXISTS showtimes")
	assert.Contains(t, Schema(), "idx_order_items_seat")
}
