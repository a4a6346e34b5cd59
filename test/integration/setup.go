package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cine-pos/internal/config"
	"cine-pos/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
}

// SetupTestDB creates a migrated PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "testuser",
		Password:        "testpass",
		Database:        "testdb",
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPool(ctx, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
	}
}

// SeedCatalog inserts one showtime, two products, an offer running around
// now and a registered customer.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool, now time.Time) {
	t.Helper()

	ctx := context.Background()

	statements := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO films (id, title) VALUES (1, 'Bacurau')`, nil},
		{`INSERT INTO rooms (id, number) VALUES (1, 4)`, nil},
		{
			`INSERT INTO showtimes (id, film_id, room_id, starts_at, ticket_price, language, available_seats)
			 VALUES (1, 1, 1, $1, 30.00, 'Dublado', $2)`,
			[]any{now.Add(3 * time.Hour), []int{1, 2, 3, 4, 5}},
		},
		{
			`INSERT INTO products (id, name, description, price, qty_available)
			 VALUES (10, 'Pipoca', 'Pipoca grande', 20.00, 5), (11, 'Refrigerante', '', 8.50, 1)`,
			nil,
		},
		{
			`INSERT INTO offers (id, product_id, starts_at, ends_at, discount_percent, description)
			 VALUES (1, 10, $1, $2, 20, 'Pipoca 20% off')`,
			[]any{now.Add(-24 * time.Hour), now.Add(24 * time.Hour)},
		},
		{`INSERT INTO customers (document, name) VALUES ('123.456.789-00', 'Maria Silva')`, nil},
	}

	for _, s := range statements {
		if _, err := pool.Exec(ctx, s.query, s.args...); err != nil {
			t.Fatalf("failed to seed catalog: %v", err)
		}
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "customers", "offers", "products", "showtimes", "rooms", "films"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
