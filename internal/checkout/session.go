package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cine-pos/internal/cart"
	"cine-pos/internal/clock"
	"cine-pos/internal/model"
	"cine-pos/internal/offer"
	"cine-pos/internal/reservation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const catalogTimeout = 10 * time.Second

// Session is one purchase in progress. Every mutation and every timer
// callback runs under mu, so the cart, the reservation and the catalog
// snapshot are only ever touched from one logical thread.
type Session struct {
	id      uuid.UUID
	clock   clock.Clock
	catalog Catalog
	offers  offer.Source
	logger  zerolog.Logger

	mu           sync.Mutex
	cart         *cart.Cart
	reservations *reservation.Manager
	showtimes    []model.Showtime
	products     []model.Product
	offerList    []model.Offer
	customer     *model.Customer
	notices      []Notice
	refresh      clock.Stopper
	closed       bool
	lastActivity time.Time
	onClose      func(uuid.UUID)
}

func newSession(ctx context.Context, cfg Config, clk clock.Clock, catalog Catalog, offers offer.Source, logger zerolog.Logger) (*Session, error) {
	s := &Session{
		id:      uuid.New(),
		clock:   clk,
		catalog: catalog,
		offers:  offers,
		cart:    cart.New(cfg.LoyaltyThreshold),
	}
	s.logger = logger.With().Str("session_id", s.id.String()).Logger()
	s.reservations = reservation.NewManager(serialScheduler{s}, s.cart, cfg.ReservationTTL, s.onReservationEvent, s.logger)

	snap, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	s.apply(snap)
	s.lastActivity = clk.Now()

	if cfg.RefreshInterval > 0 {
		s.refresh = clk.Every(cfg.RefreshInterval, s.refreshCatalog)
	}

	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// serialScheduler delivers the reservation countdown under the session lock.
type serialScheduler struct {
	s *Session
}

func (t serialScheduler) Now() time.Time {
	return t.s.clock.Now()
}

func (t serialScheduler) Every(d time.Duration, fn func()) clock.Stopper {
	return t.s.clock.Every(d, func() {
		t.s.mu.Lock()
		defer t.s.mu.Unlock()
		if t.s.closed {
			return
		}
		fn()
	})
}

type catalogSnapshot struct {
	showtimes []model.Showtime
	products  []model.Product
	offers    []model.Offer
}

func (s *Session) loadCatalog(ctx context.Context) (*catalogSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, catalogTimeout)
	defer cancel()

	showtimes, err := s.catalog.ListShowtimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load showtimes: %w", err)
	}
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	offers, err := s.offers.ListOffers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load offers: %w", err)
	}
	return &catalogSnapshot{showtimes: showtimes, products: products, offers: offers}, nil
}

func (s *Session) apply(snap *catalogSnapshot) {
	// Copied so clearSeat never writes into the provider's slice.
	s.showtimes = append([]model.Showtime(nil), snap.showtimes...)
	s.products = snap.products
	s.offerList = snap.offers
}

// refreshCatalog re-polls availability. It fetches outside the lock and
// only swaps the snapshot, leaving the cart and the countdown alone.
func (s *Session) refreshCatalog() {
	snap, err := s.loadCatalog(context.Background())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("catalog refresh failed, keeping previous snapshot")
		return
	}
	s.apply(snap)
	s.logger.Debug().Int("showtimes", len(snap.showtimes)).Msg("catalog refreshed")
}

func (s *Session) onReservationEvent(e reservation.Event) {
	if e.Kind == reservation.EventExpired {
		s.notices = append(s.notices, Notice{
			Kind:    NoticeReservationExpired,
			Message: fmt.Sprintf("Reservation for seat %d expired, please select the seat again", e.Reservation.Seat),
			At:      e.At,
		})
	}
}

// begin locks the session for a user action. The caller must unlock.
func (s *Session) begin() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return model.ErrSessionClosed
	}
	s.lastActivity = s.clock.Now()
	return nil
}

func (s *Session) findShowtime(id int64) (model.Showtime, bool) {
	for _, st := range s.showtimes {
		if st.ID == id {
			return st, true
		}
	}
	return model.Showtime{}, false
}

func (s *Session) findProduct(id int64) (model.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

func (s *Session) sellableSeat(showtimeID int64, seat int) (model.Showtime, error) {
	st, ok := s.findShowtime(showtimeID)
	if !ok {
		return model.Showtime{}, model.ErrShowtimeNotFound
	}
	if !st.HasSeat(seat) {
		return model.Showtime{}, model.ErrSeatUnavailable
	}
	return st, nil
}

// AddTicket adds a box-office ticket for seat without holding it.
func (s *Session) AddTicket(showtimeID int64, seat int) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	st, err := s.sellableSeat(showtimeID, seat)
	if err != nil {
		return err
	}
	return s.cart.AddTicket(st, seat, uuid.Nil)
}

// Reserve holds seat for the configured TTL, replacing any earlier hold.
func (s *Session) Reserve(showtimeID int64, seat int) (reservation.Reservation, error) {
	if err := s.begin(); err != nil {
		return reservation.Reservation{}, err
	}
	defer s.mu.Unlock()

	st, err := s.sellableSeat(showtimeID, seat)
	if err != nil {
		return reservation.Reservation{}, err
	}
	return s.reservations.Reserve(st, seat)
}

// CancelReservation releases the held seat. It reports whether a
// reservation was active.
func (s *Session) CancelReservation() (bool, error) {
	if err := s.begin(); err != nil {
		return false, err
	}
	defer s.mu.Unlock()

	return s.reservations.Cancel(), nil
}

// AddProduct adds one unit of a product, optionally under an offer that
// must be active for it right now.
func (s *Session) AddProduct(productID int64, offerID *int64) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	p, ok := s.findProduct(productID)
	if !ok {
		return model.ErrProductNotFound
	}

	var applied *model.Offer
	if offerID != nil {
		o, ok := offer.FindActive(s.offerList, *offerID, productID, s.clock.Now())
		if !ok {
			return model.ErrOfferNotApplicable
		}
		applied = &o
	}

	if s.cart.ProductUnits(productID)+1 > p.QtyAvailable {
		return model.ErrOutOfStock
	}

	s.cart.AddProduct(p, applied)
	return nil
}

// UpdateQuantity sets the quantity of the product line at index.
func (s *Session) UpdateQuantity(index, qty int) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if qty < 1 {
		return model.ErrInvalidQuantity
	}
	line, err := s.cart.Line(index)
	if err != nil {
		return err
	}
	if pl, ok := line.(*cart.ProductLine); ok {
		if p, found := s.findProduct(pl.Product.ID); found {
			if s.cart.ProductUnits(pl.Product.ID)-pl.Quantity+qty > p.QtyAvailable {
				return model.ErrOutOfStock
			}
		}
	}
	return s.cart.UpdateQuantity(index, qty)
}

// RemoveItem deletes the line at index. Removing the reserved ticket
// releases the reservation in the same step.
func (s *Session) RemoveItem(index int) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	line, err := s.cart.Line(index)
	if err != nil {
		return err
	}
	if tl, ok := line.(*cart.TicketLine); ok && tl.Reserved() {
		if current, active := s.reservations.Current(); active && current.ID == tl.ReservationID {
			s.reservations.Cancel()
			return nil
		}
	}
	_, err = s.cart.Remove(index)
	return err
}

// SetCustomer attaches the buyer.
func (s *Session) SetCustomer(c model.Customer) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if !model.ValidDocument(c.Document) {
		return model.ErrInvalidDocument
	}
	s.customer = &c
	return nil
}

// View returns the session state and drains pending notices.
func (s *Session) View() (View, error) {
	if err := s.begin(); err != nil {
		return View{}, err
	}
	defer s.mu.Unlock()

	v := s.viewLocked()
	s.notices = nil
	return v, nil
}

// Showtimes returns the catalog snapshot with seats already in the cart
// taken out of each showtime's availability.
func (s *Session) Showtimes() ([]ShowtimeView, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := make([]ShowtimeView, 0, len(s.showtimes))
	for _, st := range s.showtimes {
		seats := make([]int, 0, len(st.AvailableSeats))
		for _, seat := range st.AvailableSeats {
			if !s.cart.ContainsSeat(st.ID, seat) {
				seats = append(seats, seat)
			}
		}
		out = append(out, ShowtimeView{Showtime: st, SelectableSeats: seats})
	}
	return out, nil
}

// ActiveOffers returns the offers valid now for productID.
func (s *Session) ActiveOffers(productID int64) ([]model.Offer, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	return offer.Active(s.offerList, productID, s.clock.Now()), nil
}

// IdleSince returns the time of the last user action.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Close ends the session: the reservation is released, the cart emptied and
// every timer stopped. Closing twice is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.reservations.Cancel()
	s.cart.Clear()
	s.customer = nil
	s.closeLocked()
	s.logger.Info().Msg("checkout session closed")
}

func (s *Session) closeLocked() {
	if s.refresh != nil {
		s.refresh.Stop()
		s.refresh = nil
	}
	s.reservations.Reset()
	s.closed = true
	if s.onClose != nil {
		s.onClose(s.id)
	}
}

// clearSeat drops a seat that was sold elsewhere: the ticket line or hold
// goes away and the seat leaves the local availability.
func (s *Session) clearSeat(showtimeID int64, seat int) {
	if current, ok := s.reservations.Current(); ok && current.Showtime.ID == showtimeID && current.Seat == seat {
		s.reservations.Cancel()
	} else {
		s.cart.RemoveSeat(showtimeID, seat)
	}

	for i, st := range s.showtimes {
		if st.ID != showtimeID {
			continue
		}
		seats := make([]int, 0, len(st.AvailableSeats))
		for _, n := range st.AvailableSeats {
			if n != seat {
				seats = append(seats, n)
			}
		}
		s.showtimes[i].AvailableSeats = seats
	}

	s.notices = append(s.notices, Notice{
		Kind:    NoticeSeatConflict,
		Message: fmt.Sprintf("Seat %d is no longer available, please choose another", seat),
		At:      s.clock.Now(),
	})
}
