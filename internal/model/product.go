package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a concession item sold at the counter.
type Product struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Description  string          `json:"description" db:"description"`
	Price        decimal.Decimal `json:"price" db:"price"`
	QtyAvailable int             `json:"qtyAvailable" db:"qty_available"`
}

// Offer is a time-bounded percentage discount scoped to one product.
type Offer struct {
	ID              int64           `json:"id" db:"id"`
	ProductID       int64           `json:"productId" db:"product_id"`
	StartsAt        time.Time       `json:"startsAt" db:"starts_at"`
	EndsAt          time.Time       `json:"endsAt" db:"ends_at"`
	DiscountPercent decimal.Decimal `json:"discountPercent" db:"discount_percent"`
	Description     string          `json:"description" db:"description"`
}

var hundred = decimal.NewFromInt(100)

// Validate checks the constraints the offers table enforces: a product, a
// percentage between 0 and 100 and a window that does not end before it
// starts.
func (o Offer) Validate() error {
	if o.ProductID <= 0 {
		return NewDomainError(ErrCodeValidationFailed, "offer must name a product")
	}
	if o.DiscountPercent.IsNegative() || o.DiscountPercent.GreaterThan(hundred) {
		return NewDomainError(ErrCodeValidationFailed,
			fmt.Sprintf("discount percent %s is outside 0-100", o.DiscountPercent.String()))
	}
	if o.EndsAt.Before(o.StartsAt) {
		return NewDomainError(ErrCodeValidationFailed, "offer ends before it starts")
	}
	return nil
}

// IsActive reports whether the offer is valid at t. Both ends of the
// window are inclusive.
func (o Offer) IsActive(t time.Time) bool {
	return !t.Before(o.StartsAt) && !t.After(o.EndsAt)
}

// Discount returns the amount taken off base by this offer.
func (o Offer) Discount(base decimal.Decimal) decimal.Decimal {
	return base.Mul(o.DiscountPercent).Div(hundred)
}
