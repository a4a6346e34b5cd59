package repository

import (
	"context"
	"testing"
	"time"

	"cine-pos/internal/config"
	"cine-pos/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var showtimeStart = time.Date(2024, 6, 1, 21, 0, 0, 0, time.UTC)

// setupTestDB creates a PostgreSQL testcontainer with the schema applied,
// reached through the same pool setup the service uses.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
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

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	pool, err := database.NewPool(ctx, config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "postgres",
		Password:        "postgres",
		Database:        "testdb",
		MaxConnections:  5,
		MinConnections:  1,
		MaxConnLifetime: 300,
	}, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// seedCatalog inserts one film in room 4 showing twice, a product with
// stock 5 and one with none, and an offer on the first product.
func seedCatalog(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()

	statements := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO films (id, title) VALUES (1, 'Bacurau')`, nil},
		{`INSERT INTO rooms (id, number) VALUES (1, 4)`, nil},
		{
			`INSERT INTO showtimes (id, film_id, room_id, starts_at, ticket_price, language, available_seats)
			 VALUES (1, 1, 1, $1, 30.00, 'Dublado', $2), (2, 1, 1, $3, 25.50, 'Legendado', $4)`,
			[]any{showtimeStart, []int{1, 2, 3, 12}, showtimeStart.Add(3 * time.Hour), []int{5}},
		},
		{
			`INSERT INTO products (id, name, description, price, qty_available)
			 VALUES (10, 'Pipoca', 'Pipoca grande', 20.00, 5), (11, 'Refrigerante', '', 8.50, 0)`,
			nil,
		},
		{
			`INSERT INTO offers (id, product_id, starts_at, ends_at, discount_percent, description)
			 VALUES (1, 10, $1, $2, 20, 'Pipoca 20% off')`,
			[]any{showtimeStart.Add(-24 * time.Hour), showtimeStart.Add(24 * time.Hour)},
		},
		{`INSERT INTO customers (document, name) VALUES ('123.456.789-00', 'Maria Silva')`, nil},
	}

	for _, s := range statements {
		_, err := pool.Exec(ctx, s.query, s.args...)
		require.NoError(t, err)
	}
}
