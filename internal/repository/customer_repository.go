package repository

import (
	"context"
	"errors"
	"fmt"

	"cine-pos/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// customerRepository implements CustomerRepository using PostgreSQL.
type customerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(pool *pgxpool.Pool, logger zerolog.Logger) CustomerRepository {
	return &customerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "customer").Logger(),
	}
}

func (r *customerRepository) FindByDocument(ctx context.Context, document string) (*model.Customer, error) {
	query := `
		SELECT id, document, name, email, phone, created_at
		FROM customers
		WHERE document = $1
	`

	var c model.Customer
	err := r.pool.QueryRow(ctx, query, document).Scan(&c.ID, &c.Document, &c.Name, &c.Email, &c.Phone, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Msg("customer not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query customer")
		return nil, fmt.Errorf("failed to query customer: %w", err)
	}

	return &c, nil
}

func (r *customerRepository) Create(ctx context.Context, c *model.Customer) error {
	query := `
		INSERT INTO customers (document, name, email, phone, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))
		RETURNING id, created_at
	`

	var createdAt any
	if !c.CreatedAt.IsZero() {
		createdAt = c.CreatedAt
	}

	err := r.pool.QueryRow(ctx, query, c.Document, c.Name, c.Email, c.Phone, createdAt).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDomainError(model.ErrCodeValidationFailed, "A customer with this document already exists")
		}
		r.logger.Error().Err(err).Msg("failed to create customer")
		return fmt.Errorf("failed to create customer: %w", err)
	}

	r.logger.Debug().Int64("customer_id", c.ID).Msg("customer created successfully")
	return nil
}
