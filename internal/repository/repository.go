package repository

import (
	"context"

	"cine-pos/internal/model"

	"github.com/google/uuid"
)

// CatalogRepository reads the sellable catalog.
type CatalogRepository interface {
	// ListShowtimes returns every showtime with its film, room and free seats.
	ListShowtimes(ctx context.Context) ([]model.Showtime, error)

	// ListProducts returns every concession product with its stock.
	ListProducts(ctx context.Context) ([]model.Product, error)

	// ListOffers returns every offer regardless of its window.
	ListOffers(ctx context.Context) ([]model.Offer, error)
}

// CustomerRepository stores customers keyed by document.
type CustomerRepository interface {
	// FindByDocument returns nil, nil when no customer has the document.
	FindByDocument(ctx context.Context, document string) (*model.Customer, error)

	// Create inserts the customer and fills in its ID and CreatedAt.
	Create(ctx context.Context, customer *model.Customer) error
}

// OrderRepository persists completed orders.
type OrderRepository interface {
	// SubmitOrder stores the order and its items in one transaction, taking
	// the sold seats out of availability and decrementing stock.
	SubmitOrder(ctx context.Context, order *model.Order) (*model.OrderConfirmation, error)

	// GetByID returns an order with its items, or nil, nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
}
