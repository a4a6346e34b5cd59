package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cine-pos/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const pgUniqueViolation = "23505"

// orderRepository implements OrderRepository using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// SubmitOrder claims every seat and unit of stock the order needs and
// inserts it. A seat that is no longer available aborts the whole order
// with *model.SeatConflictError; missing stock aborts it with
// model.ErrOutOfStock.
func (r *orderRepository) SubmitOrder(ctx context.Context, order *model.Order) (*model.OrderConfirmation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.logger.Error().Err(rbErr).Str("order_id", order.ID.String()).Msg("failed to rollback transaction")
		}
	}()

	for _, item := range order.Items {
		switch item.Kind {
		case model.ItemKindTicket:
			if err := r.claimSeat(ctx, tx, item.ShowtimeID, item.Seat); err != nil {
				return nil, err
			}
		case model.ItemKindProduct:
			if err := r.claimStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return nil, err
			}
		}
	}

	var createdAt time.Time
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (id, customer_id, subtotal, discount, loyalty_bonus, total, created_at)
		VALUES ($1, (SELECT id FROM customers WHERE document = $2), $3, $4, $5, $6, $7)
		RETURNING created_at
	`,
		order.ID,
		order.Customer.Document,
		order.Subtotal,
		order.Discount,
		order.LoyaltyBonus,
		order.Total,
		order.CreatedAt,
	).Scan(&createdAt)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := r.createItems(ctx, tx, order.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, r.conflictFromItems(order.Items)
		}
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Int("item_count", len(order.Items)).
		Msg("order created successfully")

	return &model.OrderConfirmation{OrderID: order.ID, ConfirmedAt: createdAt}, nil
}

func (r *orderRepository) claimSeat(ctx context.Context, tx pgx.Tx, showtimeID int64, seat int) error {
	tag, err := tx.Exec(ctx, `
		UPDATE showtimes
		SET available_seats = array_remove(available_seats, $2)
		WHERE id = $1 AND $2 = ANY(available_seats)
	`, showtimeID, seat)
	if err != nil {
		r.logger.Error().Err(err).Int64("showtime_id", showtimeID).Int("seat", seat).Msg("failed to claim seat")
		return fmt.Errorf("failed to claim seat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn().Int64("showtime_id", showtimeID).Int("seat", seat).Msg("seat no longer available")
		return &model.SeatConflictError{ShowtimeID: showtimeID, Seat: seat}
	}
	return nil
}

func (r *orderRepository) claimStock(ctx context.Context, tx pgx.Tx, productID int64, qty int) error {
	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET qty_available = qty_available - $2
		WHERE id = $1 AND qty_available >= $2
	`, productID, qty)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to decrement stock")
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn().Int64("product_id", productID).Int("quantity", qty).Msg("not enough stock")
		return model.ErrOutOfStock
	}
	return nil
}

func (r *orderRepository) createItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, kind, showtime_id, seat, product_id, offer_id, quantity, unit_price, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		var showtimeID, productID *int64
		var seat *int
		if item.Kind == model.ItemKindTicket {
			showtimeID, seat = &item.ShowtimeID, &item.Seat
		} else {
			productID = &item.ProductID
		}
		batch.Queue(query,
			item.ID,
			item.OrderID,
			string(item.Kind),
			showtimeID,
			seat,
			productID,
			item.OfferID,
			item.Quantity,
			item.UnitPrice,
			item.Total,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range items {
		if _, err := results.Exec(); err != nil {
			if isUniqueViolation(err) && items[i].Kind == model.ItemKindTicket {
				return &model.SeatConflictError{ShowtimeID: items[i].ShowtimeID, Seat: items[i].Seat}
			}
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("kind", string(items[i].Kind)).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

// conflictFromItems reports the first ticket of an order rejected by the
// sold-seat index.
func (r *orderRepository) conflictFromItems(items []model.OrderItem) error {
	for _, item := range items {
		if item.Kind == model.ItemKindTicket {
			return &model.SeatConflictError{ShowtimeID: item.ShowtimeID, Seat: item.Seat}
		}
	}
	return model.ErrSeatConflict
}

// GetByID retrieves an order by its ID along with its customer and items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	orderQuery := `
		SELECT o.id, o.subtotal, o.discount, o.loyalty_bonus, o.total, o.created_at,
		       c.id, c.document, c.name, c.email, c.phone, c.created_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1
	`

	var order model.Order
	err := r.pool.QueryRow(ctx, orderQuery, id).Scan(
		&order.ID,
		&order.Subtotal,
		&order.Discount,
		&order.LoyaltyBonus,
		&order.Total,
		&order.CreatedAt,
		&order.Customer.ID,
		&order.Customer.Document,
		&order.Customer.Name,
		&order.Customer.Email,
		&order.Customer.Phone,
		&order.Customer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, kind, COALESCE(showtime_id, 0), COALESCE(seat, 0), COALESCE(product_id, 0),
		       offer_id, quantity, unit_price, total
		FROM order_items
		WHERE order_id = $1
		ORDER BY kind DESC, id
	`

	rows, err := r.pool.Query(ctx, itemsQuery, id)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	order.Items = []model.OrderItem{}
	for rows.Next() {
		var (
			item model.OrderItem
			kind string
		)
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&kind,
			&item.ShowtimeID,
			&item.Seat,
			&item.ProductID,
			&item.OfferID,
			&item.Quantity,
			&item.UnitPrice,
			&item.Total,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		item.Kind = model.ItemKind(kind)
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return &order, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
