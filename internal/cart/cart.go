// Package cart holds the ordered collection of ticket and product lines
// for one purchase and computes its totals.
package cart

import (
	"cine-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultLoyaltyThreshold is the ticket count that earns one free ticket.
const DefaultLoyaltyThreshold = 10

// Totals is the breakdown of a cart's value.
type Totals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	LoyaltyBonus decimal.Decimal `json:"loyaltyBonus"`
	Total        decimal.Decimal `json:"total"`
}

// Cart is an ordered list of lines. It is not safe for concurrent use;
// the owning checkout session serialises access.
type Cart struct {
	lines            []Line
	loyaltyThreshold int
}

// New returns an empty cart. A threshold below one disables the loyalty bonus.
func New(loyaltyThreshold int) *Cart {
	return &Cart{loyaltyThreshold: loyaltyThreshold}
}

// AddTicket appends a ticket line for seat. A seat already in the cart for
// the same showtime is rejected with model.ErrAlreadyInCart.
func (c *Cart) AddTicket(showtime model.Showtime, seat int, reservationID uuid.UUID) error {
	if c.ContainsSeat(showtime.ID, seat) {
		return model.ErrAlreadyInCart
	}
	c.lines = append(c.lines, &TicketLine{
		Showtime:      showtime,
		Seat:          seat,
		ReservationID: reservationID,
	})
	return nil
}

// AddProduct increments the line holding the same product and offer, or
// appends a new line with quantity one. It returns the line index.
func (c *Cart) AddProduct(product model.Product, offer *model.Offer) int {
	for i, l := range c.lines {
		pl, ok := l.(*ProductLine)
		if ok && pl.Product.ID == product.ID && sameOffer(pl.Offer, offer) {
			pl.Quantity++
			return i
		}
	}

	var attached *model.Offer
	if offer != nil {
		o := *offer
		attached = &o
	}
	c.lines = append(c.lines, &ProductLine{Product: product, Quantity: 1, Offer: attached})
	return len(c.lines) - 1
}

// UpdateQuantity sets the quantity of the product line at index. Values
// below one are rejected and leave the line unchanged. Ticket lines have a
// fixed quantity.
func (c *Cart) UpdateQuantity(index, qty int) error {
	if qty < 1 {
		return model.ErrInvalidQuantity
	}
	l, err := c.Line(index)
	if err != nil {
		return err
	}
	pl, ok := l.(*ProductLine)
	if !ok {
		return model.ErrInvalidQuantity
	}
	pl.Quantity = qty
	return nil
}

// Line returns the line at index.
func (c *Cart) Line(index int) (Line, error) {
	if index < 0 || index >= len(c.lines) {
		return nil, model.ErrItemNotFound
	}
	return c.lines[index], nil
}

// Remove deletes the line at index and returns it.
func (c *Cart) Remove(index int) (Line, error) {
	l, err := c.Line(index)
	if err != nil {
		return nil, err
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return l, nil
}

// RemoveReservation deletes the ticket line tied to reservationID. It
// reports whether a line was removed.
func (c *Cart) RemoveReservation(reservationID uuid.UUID) bool {
	if reservationID == uuid.Nil {
		return false
	}
	for i, l := range c.lines {
		if tl, ok := l.(*TicketLine); ok && tl.ReservationID == reservationID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveSeat deletes the ticket line for seat of showtimeID, if present.
func (c *Cart) RemoveSeat(showtimeID int64, seat int) (*TicketLine, bool) {
	for i, l := range c.lines {
		if tl, ok := l.(*TicketLine); ok && tl.Showtime.ID == showtimeID && tl.Seat == seat {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return tl, true
		}
	}
	return nil, false
}

// ContainsSeat reports whether seat of showtimeID is already in the cart.
func (c *Cart) ContainsSeat(showtimeID int64, seat int) bool {
	for _, l := range c.lines {
		if tl, ok := l.(*TicketLine); ok && tl.Showtime.ID == showtimeID && tl.Seat == seat {
			return true
		}
	}
	return false
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// TicketCount returns the number of ticket lines.
func (c *Cart) TicketCount() int {
	n := 0
	for _, l := range c.lines {
		if _, ok := l.(*TicketLine); ok {
			n++
		}
	}
	return n
}

// ProductUnits returns the quantity of productID across all its lines.
func (c *Cart) ProductUnits(productID int64) int {
	n := 0
	for _, l := range c.lines {
		if pl, ok := l.(*ProductLine); ok && pl.Product.ID == productID {
			n += pl.Quantity
		}
	}
	return n
}

// LoyaltyEligible reports whether the cart earns the free ticket.
func (c *Cart) LoyaltyEligible() bool {
	return c.loyaltyThreshold > 0 && c.TicketCount() >= c.loyaltyThreshold
}

// Totals computes the cart value. Each line is net of its own offer; the
// loyalty bonus then subtracts the undiscounted price of the first ticket
// line once. Line discounts are rounded to cents before they are summed,
// so the breakdown always adds up to the stored order.
func (c *Cart) Totals() Totals {
	t := Totals{
		Subtotal:     decimal.Zero,
		Discount:     decimal.Zero,
		LoyaltyBonus: decimal.Zero,
	}

	var firstTicket *TicketLine
	for _, l := range c.lines {
		switch v := l.(type) {
		case *TicketLine:
			t.Subtotal = t.Subtotal.Add(v.Amount())
			if firstTicket == nil {
				firstTicket = v
			}
		case *ProductLine:
			t.Subtotal = t.Subtotal.Add(v.Gross())
			t.Discount = t.Discount.Add(v.Discount())
		}
	}

	if firstTicket != nil && c.LoyaltyEligible() {
		t.LoyaltyBonus = firstTicket.UnitPrice()
	}

	t.Total = t.Subtotal.Sub(t.Discount).Sub(t.LoyaltyBonus)
	return t
}

// Total returns Totals().Total.
func (c *Cart) Total() decimal.Decimal {
	return c.Totals().Total
}

// Snapshot returns a deep copy of the lines.
func (c *Cart) Snapshot() []Line {
	out := make([]Line, len(c.lines))
	for i, l := range c.lines {
		out[i] = l.clone()
	}
	return out
}

// Clear removes every line.
func (c *Cart) Clear() {
	c.lines = nil
}
