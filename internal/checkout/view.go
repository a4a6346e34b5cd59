package checkout

import (
	"fmt"
	"time"

	"cine-pos/internal/cart"
	"cine-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// View is a read-only picture of a session.
type View struct {
	ID              uuid.UUID        `json:"id"`
	Items           []ItemView       `json:"items"`
	Totals          cart.Totals      `json:"totals"`
	LoyaltyEligible bool             `json:"loyaltyEligible"`
	Reservation     *ReservationView `json:"reservation,omitempty"`
	Customer        *model.Customer  `json:"customer,omitempty"`
	Notices         []Notice         `json:"notices"`
}

// ItemView renders one cart line.
type ItemView struct {
	Index           int              `json:"index"`
	Kind            model.ItemKind   `json:"kind"`
	ShowtimeID      int64            `json:"showtimeId,omitempty"`
	FilmTitle       string           `json:"filmTitle,omitempty"`
	StartsAt        *time.Time       `json:"startsAt,omitempty"`
	Seat            int              `json:"seat,omitempty"`
	Reserved        bool             `json:"reserved,omitempty"`
	ProductID       int64            `json:"productId,omitempty"`
	ProductName     string           `json:"productName,omitempty"`
	OfferID         *int64           `json:"offerId,omitempty"`
	DiscountPercent *decimal.Decimal `json:"discountPercent,omitempty"`
	Quantity        int              `json:"quantity"`
	UnitPrice       decimal.Decimal  `json:"unitPrice"`
	Amount          decimal.Decimal  `json:"amount"`
}

// ReservationView renders the active hold and its countdown.
type ReservationView struct {
	ID               uuid.UUID `json:"id"`
	ShowtimeID       int64     `json:"showtimeId"`
	Seat             int       `json:"seat"`
	ExpiresAt        time.Time `json:"expiresAt"`
	RemainingSeconds int       `json:"remainingSeconds"`
	Remaining        string    `json:"remaining"`
}

// ShowtimeView is a showtime with the seats this session can still pick.
type ShowtimeView struct {
	model.Showtime
	SelectableSeats []int `json:"selectableSeats"`
}

// formatRemaining renders d as m:ss.
func formatRemaining(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func (s *Session) viewLocked() View {
	lines := s.cart.Snapshot()
	v := View{
		ID:              s.id,
		Items:           make([]ItemView, 0, len(lines)),
		Totals:          s.cart.Totals(),
		LoyaltyEligible: s.cart.LoyaltyEligible(),
		Notices:         append([]Notice(nil), s.notices...),
	}

	for i, l := range lines {
		v.Items = append(v.Items, itemView(i, l))
	}

	if r, ok := s.reservations.Current(); ok {
		remaining := s.reservations.Remaining()
		v.Reservation = &ReservationView{
			ID:               r.ID,
			ShowtimeID:       r.Showtime.ID,
			Seat:             r.Seat,
			ExpiresAt:        r.ExpiresAt,
			RemainingSeconds: int(remaining / time.Second),
			Remaining:        formatRemaining(remaining),
		}
	}

	if s.customer != nil {
		c := *s.customer
		v.Customer = &c
	}

	return v
}

func itemView(index int, l cart.Line) ItemView {
	iv := ItemView{
		Index:     index,
		Kind:      l.Kind(),
		Quantity:  l.Units(),
		UnitPrice: l.UnitPrice(),
		Amount:    l.Amount(),
	}

	switch v := l.(type) {
	case *cart.TicketLine:
		startsAt := v.Showtime.StartsAt
		iv.ShowtimeID = v.Showtime.ID
		iv.FilmTitle = v.Showtime.Film.Title
		iv.StartsAt = &startsAt
		iv.Seat = v.Seat
		iv.Reserved = v.Reserved()
	case *cart.ProductLine:
		iv.ProductID = v.Product.ID
		iv.ProductName = v.Product.Name
		if v.Offer != nil {
			id := v.Offer.ID
			pct := v.Offer.DiscountPercent
			iv.OfferID = &id
			iv.DiscountPercent = &pct
		}
	}

	return iv
}
