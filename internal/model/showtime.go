package model

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Film is the subset of movie data needed to sell a ticket.
type Film struct {
	ID    int64  `json:"id" db:"id"`
	Title string `json:"title" db:"title"`
}

// Room is the auditorium a showtime is screened in.
type Room struct {
	ID     int64 `json:"id" db:"id"`
	Number int   `json:"number" db:"number"`
}

// Showtime represents a scheduled screening.
type Showtime struct {
	ID             int64           `json:"id" db:"id"`
	Film           Film            `json:"film"`
	Room           Room            `json:"room"`
	StartsAt       time.Time       `json:"startsAt" db:"starts_at"`
	TicketPrice    decimal.Decimal `json:"ticketPrice" db:"ticket_price"`
	Language       string          `json:"language" db:"language"`
	AvailableSeats []int           `json:"availableSeats" db:"available_seats"`
}

// HasSeat reports whether seat is still listed as available.
func (s Showtime) HasSeat(seat int) bool {
	return slices.Contains(s.AvailableSeats, seat)
}
