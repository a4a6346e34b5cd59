// Package queue publishes order events to RabbitMQ.
package queue

import (
	"time"

	"cine-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderCompletedEvent is the message body announced after a sale.
type OrderCompletedEvent struct {
	OrderID          uuid.UUID       `json:"orderId"`
	CustomerDocument string          `json:"customerDocument"`
	CustomerName     string          `json:"customerName"`
	Tickets          int             `json:"tickets"`
	Items            []EventItem     `json:"items"`
	Total            decimal.Decimal `json:"total"`
	CompletedAt      time.Time       `json:"completedAt"`
}

// EventItem is one sold line.
type EventItem struct {
	Kind        model.ItemKind  `json:"kind"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

// NewOrderCompletedEvent builds the event announced for receipt.
func NewOrderCompletedEvent(receipt *model.Receipt) OrderCompletedEvent {
	event := OrderCompletedEvent{
		OrderID:          receipt.OrderID,
		CustomerDocument: receipt.CustomerDocument,
		CustomerName:     receipt.CustomerName,
		Items:            make([]EventItem, 0, len(receipt.Items)),
		Total:            receipt.Total,
		CompletedAt:      receipt.IssuedAt.UTC(),
	}

	for _, item := range receipt.Items {
		ei := EventItem{Kind: item.Kind, Quantity: item.Quantity, Amount: item.Amount}
		switch {
		case item.Ticket != nil:
			event.Tickets++
			ei.Description = item.Ticket.FilmTitle
		case item.Product != nil:
			ei.Description = item.Product.Name
		}
		event.Items = append(event.Items, ei)
	}

	return event
}
