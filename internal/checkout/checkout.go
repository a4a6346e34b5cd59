// Package checkout runs point-of-sale purchase sessions: the cart, the seat
// reservation and the catalog snapshot for one buyer, and the orchestrator
// that turns a session into a submitted order and a receipt.
package checkout

import (
	"context"
	"time"

	"cine-pos/internal/cart"
	"cine-pos/internal/model"
	"cine-pos/internal/reservation"
)

// Catalog supplies the showtimes and products a session sells.
type Catalog interface {
	ListShowtimes(ctx context.Context) ([]model.Showtime, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
}

// CustomerStore looks up and registers customers.
type CustomerStore interface {
	// FindByDocument returns nil, nil when no customer has the document.
	FindByDocument(ctx context.Context, document string) (*model.Customer, error)
	Create(ctx context.Context, customer *model.Customer) error
}

// OrderSink stores submitted orders. A seat sold concurrently is reported
// as *model.SeatConflictError.
type OrderSink interface {
	SubmitOrder(ctx context.Context, order *model.Order) (*model.OrderConfirmation, error)
}

// EventPublisher announces completed orders to downstream consumers.
type EventPublisher interface {
	PublishOrderCompleted(ctx context.Context, receipt *model.Receipt) error
}

// Config holds session tuning.
type Config struct {
	ReservationTTL   time.Duration
	RefreshInterval  time.Duration
	IdleTimeout      time.Duration
	LoyaltyThreshold int
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		ReservationTTL:   reservation.DefaultTTL,
		RefreshInterval:  30 * time.Second,
		IdleTimeout:      30 * time.Minute,
		LoyaltyThreshold: cart.DefaultLoyaltyThreshold,
	}
}

// Notice is a user-visible message raised outside a direct request, such
// as a reservation expiring.
type Notice struct {
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

const (
	NoticeReservationExpired = "reservation_expired"
	NoticeSeatConflict       = "seat_conflict"
)
