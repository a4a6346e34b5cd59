package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cine-pos/internal/cart"
	"cine-pos/internal/clock"
	"cine-pos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

// Service validates sessions, submits their orders and looks up customers.
type Service struct {
	sink      OrderSink
	customers CustomerStore
	publisher EventPublisher
	clock     clock.Clock
	logger    zerolog.Logger
}

// NewService creates a checkout orchestrator. publisher may be nil.
func NewService(sink OrderSink, customers CustomerStore, publisher EventPublisher, clk clock.Clock, logger zerolog.Logger) *Service {
	return &Service{
		sink:      sink,
		customers: customers,
		publisher: publisher,
		clock:     clk,
		logger:    logger.With().Str("service", "checkout").Logger(),
	}
}

// Checkout submits the session's cart for its customer. On success the
// session is reset and closed and a receipt is returned. A seat conflict
// clears that seat from the session, which stays open for another pick.
func (s *Service) Checkout(ctx context.Context, sess *Session) (*model.Receipt, error) {
	receipt, err := s.submit(ctx, sess)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := s.publisher.PublishOrderCompleted(pubCtx, receipt); err != nil {
			s.logger.Warn().
				Err(err).
				Str("order_id", receipt.OrderID.String()).
				Msg("failed to publish order completed event")
		}
	}

	return receipt, nil
}

func (s *Service) submit(ctx context.Context, sess *Session) (*model.Receipt, error) {
	if err := sess.begin(); err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if err := validate(sess); err != nil {
		s.logger.Debug().Err(err).Str("session_id", sess.id.String()).Msg("checkout rejected")
		return nil, err
	}

	lines := sess.cart.Snapshot()
	order := buildOrder(*sess.customer, lines, sess.cart.Totals(), s.clock.Now())

	confirmation, err := s.sink.SubmitOrder(ctx, order)
	if err != nil {
		var conflict *model.SeatConflictError
		if errors.As(err, &conflict) {
			sess.clearSeat(conflict.ShowtimeID, conflict.Seat)
			s.logger.Warn().
				Str("session_id", sess.id.String()).
				Int64("showtime_id", conflict.ShowtimeID).
				Int("seat", conflict.Seat).
				Msg("seat taken concurrently, selection cleared")
			return nil, conflict
		}
		if errors.Is(err, model.ErrOutOfStock) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to submit order")
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}

	receipt := buildReceipt(order, lines, confirmation)

	sess.reservations.Reset()
	sess.cart.Clear()
	sess.customer = nil
	sess.closeLocked()

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("session_id", sess.id.String()).
		Int("item_count", len(order.Items)).
		Str("total", order.Total.StringFixed(2)).
		Msg("order completed")

	return receipt, nil
}

func validate(sess *Session) error {
	if sess.customer == nil {
		return model.ErrCustomerRequired
	}
	if !model.ValidDocument(sess.customer.Document) {
		return model.ErrInvalidDocument
	}
	if sess.cart.IsEmpty() {
		return model.ErrEmptyCart
	}
	return nil
}

func buildOrder(customer model.Customer, lines []cart.Line, totals cart.Totals, now time.Time) *model.Order {
	order := &model.Order{
		ID:           uuid.New(),
		Customer:     customer,
		Items:        make([]model.OrderItem, 0, len(lines)),
		Subtotal:     totals.Subtotal,
		Discount:     totals.Discount,
		LoyaltyBonus: totals.LoyaltyBonus,
		Total:        totals.Total,
		CreatedAt:    now,
	}

	for _, l := range lines {
		item := model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			Kind:      l.Kind(),
			Quantity:  l.Units(),
			UnitPrice: l.UnitPrice(),
			Total:     l.Amount(),
		}
		switch v := l.(type) {
		case *cart.TicketLine:
			item.ShowtimeID = v.Showtime.ID
			item.Seat = v.Seat
		case *cart.ProductLine:
			item.ProductID = v.Product.ID
			if v.Offer != nil {
				id := v.Offer.ID
				item.OfferID = &id
			}
		}
		order.Items = append(order.Items, item)
	}

	return order
}

func buildReceipt(order *model.Order, lines []cart.Line, confirmation *model.OrderConfirmation) *model.Receipt {
	r := &model.Receipt{
		OrderID:          order.ID,
		CustomerName:     order.Customer.Name,
		CustomerDocument: order.Customer.Document,
		Items:            make([]model.ReceiptItem, 0, len(lines)),
		Subtotal:         order.Subtotal,
		Discount:         order.Discount,
		LoyaltyBonus:     order.LoyaltyBonus,
		Total:            order.Total,
		IssuedAt:         order.CreatedAt,
	}
	if confirmation != nil {
		if confirmation.OrderID != uuid.Nil {
			r.OrderID = confirmation.OrderID
		}
		if !confirmation.ConfirmedAt.IsZero() {
			r.IssuedAt = confirmation.ConfirmedAt
		}
	}

	for _, l := range lines {
		item := model.ReceiptItem{
			Kind:     l.Kind(),
			Quantity: l.Units(),
			Amount:   l.Amount(),
		}
		switch v := l.(type) {
		case *cart.TicketLine:
			item.Ticket = &model.ReceiptTicket{
				FilmTitle:  v.Showtime.Film.Title,
				StartsAt:   v.Showtime.StartsAt,
				RoomNumber: v.Showtime.Room.Number,
				Seat:       v.Seat,
			}
		case *cart.ProductLine:
			item.Product = &model.ReceiptProduct{Name: v.Product.Name}
			if v.Offer != nil {
				pct := v.Offer.DiscountPercent
				item.Product.DiscountPercent = &pct
			}
		}
		r.Items = append(r.Items, item)
	}

	return r
}

// FindCustomer looks a customer up by document.
func (s *Service) FindCustomer(ctx context.Context, document string) (*model.Customer, error) {
	if !model.ValidDocument(document) {
		return nil, model.ErrInvalidDocument
	}

	c, err := s.customers.FindByDocument(ctx, document)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to look up customer")
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}
	if c == nil {
		return nil, model.ErrCustomerNotFound
	}
	return c, nil
}

// RegisterCustomer creates a customer inline during a sale. An existing
// customer with the same document is returned unchanged.
func (s *Service) RegisterCustomer(ctx context.Context, req *model.CustomerRequest) (*model.Customer, error) {
	if req == nil {
		return nil, fmt.Errorf("customer request is nil")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.customers.FindByDocument(ctx, req.Document)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to look up customer")
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	c := &model.Customer{
		Document:  req.Document,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		CreatedAt: s.clock.Now(),
	}
	if err := s.customers.Create(ctx, c); err != nil {
		s.logger.Error().Err(err).Msg("failed to create customer")
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.Info().Int64("customer_id", c.ID).Msg("customer registered")
	return c, nil
}
