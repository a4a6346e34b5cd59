package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemKind tags an order or receipt line.
type ItemKind string

const (
	ItemKindTicket  ItemKind = "ticket"
	ItemKindProduct ItemKind = "product"
)

// Order is the aggregate submitted to the order-sink at checkout.
type Order struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Customer     Customer        `json:"customer"`
	Items        []OrderItem     `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal" db:"subtotal"`
	Discount     decimal.Decimal `json:"discount" db:"discount"`
	LoyaltyBonus decimal.Decimal `json:"loyaltyBonus" db:"loyalty_bonus"`
	Total        decimal.Decimal `json:"total" db:"total"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
}

// OrderItem is the persisted form of a cart line. Ticket items set
// ShowtimeID and Seat; product items set ProductID and optionally OfferID.
type OrderItem struct {
	ID         uuid.UUID       `json:"-" db:"id"`
	OrderID    uuid.UUID       `json:"-" db:"order_id"`
	Kind       ItemKind        `json:"kind" db:"kind"`
	ShowtimeID int64           `json:"showtimeId,omitempty" db:"showtime_id"`
	Seat       int             `json:"seat,omitempty" db:"seat"`
	ProductID  int64           `json:"productId,omitempty" db:"product_id"`
	OfferID    *int64          `json:"offerId,omitempty" db:"offer_id"`
	Quantity   int             `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Total      decimal.Decimal `json:"total" db:"total"`
}

// OrderConfirmation is returned by the order-sink once an order is stored.
type OrderConfirmation struct {
	OrderID     uuid.UUID `json:"orderId"`
	ConfirmedAt time.Time `json:"confirmedAt"`
}

// Receipt is the view-model handed to the presentation layer after a
// successful checkout.
type Receipt struct {
	OrderID          uuid.UUID       `json:"orderId"`
	CustomerName     string          `json:"customerName"`
	CustomerDocument string          `json:"customerDocument"`
	Items            []ReceiptItem   `json:"items"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Discount         decimal.Decimal `json:"discount"`
	LoyaltyBonus     decimal.Decimal `json:"loyaltyBonus"`
	Total            decimal.Decimal `json:"total"`
	IssuedAt         time.Time       `json:"issuedAt"`
}

// ReceiptItem carries enough detail to render one receipt line.
type ReceiptItem struct {
	Kind     ItemKind        `json:"kind"`
	Ticket   *ReceiptTicket  `json:"ticket,omitempty"`
	Product  *ReceiptProduct `json:"product,omitempty"`
	Quantity int             `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

// ReceiptTicket describes a ticket line.
type ReceiptTicket struct {
	FilmTitle  string    `json:"filmTitle"`
	StartsAt   time.Time `json:"startsAt"`
	RoomNumber int       `json:"roomNumber"`
	Seat       int       `json:"seat"`
}

// ReceiptProduct describes a product line.
type ReceiptProduct struct {
	Name            string           `json:"name"`
	DiscountPercent *decimal.Decimal `json:"discountPercent,omitempty"`
}
