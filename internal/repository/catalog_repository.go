package repository

import (
	"context"
	"fmt"

	"cine-pos/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// catalogRepository implements CatalogRepository using PostgreSQL.
type catalogRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool *pgxpool.Pool, logger zerolog.Logger) CatalogRepository {
	return &catalogRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "catalog").Logger(),
	}
}

func (r *catalogRepository) ListShowtimes(ctx context.Context) ([]model.Showtime, error) {
	query := `
		SELECT s.id, f.id, f.title, rm.id, rm.number, s.starts_at,
		       s.ticket_price, s.language, s.available_seats
		FROM showtimes s
		JOIN films f ON f.id = s.film_id
		JOIN rooms rm ON rm.id = s.room_id
		ORDER BY s.starts_at, s.id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query showtimes")
		return nil, fmt.Errorf("failed to query showtimes: %w", err)
	}
	defer rows.Close()

	showtimes := []model.Showtime{}
	for rows.Next() {
		var s model.Showtime
		err := rows.Scan(
			&s.ID,
			&s.Film.ID,
			&s.Film.Title,
			&s.Room.ID,
			&s.Room.Number,
			&s.StartsAt,
			&s.TicketPrice,
			&s.Language,
			&s.AvailableSeats,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan showtime row")
			return nil, fmt.Errorf("failed to scan showtime: %w", err)
		}
		showtimes = append(showtimes, s)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating showtime rows")
		return nil, fmt.Errorf("error iterating showtimes: %w", err)
	}

	return showtimes, nil
}

func (r *catalogRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT id, name, description, price, qty_available
		FROM products
		ORDER BY name, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.QtyAvailable); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func (r *catalogRepository) ListOffers(ctx context.Context) ([]model.Offer, error) {
	query := `
		SELECT id, product_id, starts_at, ends_at, discount_percent, description
		FROM offers
		ORDER BY product_id, starts_at, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query offers")
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	offers := []model.Offer{}
	for rows.Next() {
		var o model.Offer
		if err := rows.Scan(&o.ID, &o.ProductID, &o.StartsAt, &o.EndsAt, &o.DiscountPercent, &o.Description); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan offer row")
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating offer rows")
		return nil, fmt.Errorf("error iterating offers: %w", err)
	}

	return offers, nil
}
