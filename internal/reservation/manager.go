// Package reservation implements the single-seat hold with a countdown
// that expires and releases the seat automatically.
package reservation

import (
	"time"

	"cine-pos/internal/clock"
	"cine-pos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTTL is how long a seat stays held.
const DefaultTTL = 600 * time.Second

const tickInterval = time.Second

// State of the manager.
type State string

const (
	StateIdle     State = "idle"
	StateReserved State = "reserved"
)

// EventKind identifies a transition.
type EventKind string

const (
	EventReserved  EventKind = "reserved"
	EventCancelled EventKind = "cancelled"
	EventExpired   EventKind = "expired"
)

// Reservation is the active hold.
type Reservation struct {
	ID        uuid.UUID      `json:"id"`
	Showtime  model.Showtime `json:"showtime"`
	Seat      int            `json:"seat"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// Event is emitted on every transition.
type Event struct {
	Kind        EventKind
	Reservation Reservation
	At          time.Time
}

// Lines is the part of the cart the manager keeps in step with the hold.
type Lines interface {
	AddTicket(showtime model.Showtime, seat int, reservationID uuid.UUID) error
	RemoveReservation(reservationID uuid.UUID) bool
	ContainsSeat(showtimeID int64, seat int) bool
}

// Scheduler provides time and the per-second countdown tick. Callbacks
// must be delivered on the same logical thread as the manager's callers.
type Scheduler interface {
	Now() time.Time
	Every(d time.Duration, fn func()) clock.Stopper
}

// Manager holds at most one reservation. It is not safe for concurrent
// use; the owning session serialises calls and tick delivery.
type Manager struct {
	sched    Scheduler
	lines    Lines
	ttl      time.Duration
	observer func(Event)
	logger   zerolog.Logger

	current   *Reservation
	remaining time.Duration
	ticker    clock.Stopper
}

// NewManager creates an idle manager. observer may be nil.
func NewManager(sched Scheduler, lines Lines, ttl time.Duration, observer func(Event), logger zerolog.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if observer == nil {
		observer = func(Event) {}
	}
	return &Manager{
		sched:    sched,
		lines:    lines,
		ttl:      ttl,
		observer: observer,
		logger:   logger.With().Str("component", "reservation").Logger(),
	}
}

// Reserve holds seat for showtime, cancelling any active reservation
// first, and adds the matching ticket line. If the seat is already in the
// cart outside the active reservation nothing changes and
// model.ErrAlreadyInCart is returned.
func (m *Manager) Reserve(showtime model.Showtime, seat int) (Reservation, error) {
	holdsSeat := m.current != nil && m.current.Showtime.ID == showtime.ID && m.current.Seat == seat
	if !holdsSeat && m.lines.ContainsSeat(showtime.ID, seat) {
		return Reservation{}, model.ErrAlreadyInCart
	}

	if m.current != nil {
		m.release(EventCancelled)
	}

	now := m.sched.Now()
	r := Reservation{
		ID:        uuid.New(),
		Showtime:  showtime,
		Seat:      seat,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.lines.AddTicket(showtime, seat, r.ID); err != nil {
		return Reservation{}, err
	}

	m.current = &r
	m.remaining = m.ttl
	id := r.ID
	m.ticker = m.sched.Every(tickInterval, func() { m.tick(id) })

	m.logger.Info().
		Str("reservation_id", r.ID.String()).
		Int64("showtime_id", showtime.ID).
		Int("seat", seat).
		Time("expires_at", r.ExpiresAt).
		Msg("seat reserved")
	m.observer(Event{Kind: EventReserved, Reservation: r, At: now})

	return r, nil
}

// Cancel releases the active reservation and removes its ticket line. It
// reports whether anything was cancelled; calling it while idle is a no-op.
func (m *Manager) Cancel() bool {
	if m.current == nil {
		return false
	}
	m.release(EventCancelled)
	return true
}

// Reset drops the active reservation without touching the cart. It is used
// once the held seat has been sold.
func (m *Manager) Reset() {
	m.stopTicker()
	m.current = nil
	m.remaining = 0
}

// State returns the current state.
func (m *Manager) State() State {
	if m.current == nil {
		return StateIdle
	}
	return StateReserved
}

// Current returns the active reservation.
func (m *Manager) Current() (Reservation, bool) {
	if m.current == nil {
		return Reservation{}, false
	}
	return *m.current, true
}

// Remaining returns the time left on the active reservation, zero when idle.
func (m *Manager) Remaining() time.Duration {
	return m.remaining
}

func (m *Manager) tick(id uuid.UUID) {
	if m.current == nil || m.current.ID != id {
		// Already cancelled, expired or superseded.
		return
	}
	m.remaining -= tickInterval
	if m.remaining <= 0 {
		m.release(EventExpired)
	}
}

// release moves to Idle, removing the ticket line, stopping the countdown
// and clearing the remaining time in one step.
func (m *Manager) release(kind EventKind) {
	r := *m.current
	m.stopTicker()
	m.lines.RemoveReservation(r.ID)
	m.current = nil
	m.remaining = 0

	m.logger.Info().
		Str("reservation_id", r.ID.String()).
		Int64("showtime_id", r.Showtime.ID).
		Int("seat", r.Seat).
		Str("reason", string(kind)).
		Msg("reservation released")
	m.observer(Event{Kind: kind, Reservation: r, At: m.sched.Now()})
}

func (m *Manager) stopTicker() {
	if m.ticker != nil {
		m.ticker.Stop()
		m.ticker = nil
	}
}
