package cart

import (
	"cine-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// centPlaces is the precision every cart amount is kept at.
const centPlaces = 2

// Line is one cart entry. It is implemented only by *TicketLine and
// *ProductLine.
type Line interface {
	Kind() model.ItemKind
	Units() int
	UnitPrice() decimal.Decimal
	// Amount is the line total net of its own discount.
	Amount() decimal.Decimal
	clone() Line
}

// TicketLine is a single seat for a showtime. Quantity is always one.
type TicketLine struct {
	Showtime model.Showtime
	Seat     int
	// ReservationID is set when the seat is held by a reservation.
	ReservationID uuid.UUID
}

func (l *TicketLine) Kind() model.ItemKind { return model.ItemKindTicket }

func (l *TicketLine) Units() int { return 1 }

func (l *TicketLine) UnitPrice() decimal.Decimal { return l.Showtime.TicketPrice }

func (l *TicketLine) Amount() decimal.Decimal { return l.Showtime.TicketPrice }

// Reserved reports whether the line belongs to a reservation.
func (l *TicketLine) Reserved() bool { return l.ReservationID != uuid.Nil }

func (l *TicketLine) clone() Line {
	c := *l
	c.Showtime.AvailableSeats = append([]int(nil), l.Showtime.AvailableSeats...)
	return &c
}

// ProductLine is a product purchase with an optional offer attached.
type ProductLine struct {
	Product  model.Product
	Quantity int
	Offer    *model.Offer
}

func (l *ProductLine) Kind() model.ItemKind { return model.ItemKindProduct }

func (l *ProductLine) Units() int { return l.Quantity }

func (l *ProductLine) UnitPrice() decimal.Decimal { return l.Product.Price }

// Gross is unit price times quantity before any discount.
func (l *ProductLine) Gross() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Discount is the amount taken off Gross by the attached offer, rounded
// half-up to whole cents.
func (l *ProductLine) Discount() decimal.Decimal {
	if l.Offer == nil {
		return decimal.Zero
	}
	return l.Offer.Discount(l.Gross()).Round(centPlaces)
}

func (l *ProductLine) Amount() decimal.Decimal {
	return l.Gross().Sub(l.Discount())
}

func (l *ProductLine) clone() Line {
	c := *l
	if l.Offer != nil {
		o := *l.Offer
		c.Offer = &o
	}
	return &c
}

// sameOffer reports whether two optional offers have the same identity.
func sameOffer(a, b *model.Offer) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID == b.ID
}
