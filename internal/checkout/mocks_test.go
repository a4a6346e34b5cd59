package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"cine-pos/internal/clock"
	"cine-pos/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 19, 0, 0, 0, time.UTC)

// stubCatalog serves a catalog that tests can swap between refreshes.
type stubCatalog struct {
	mu        sync.Mutex
	showtimes []model.Showtime
	products  []model.Product
	offers    []model.Offer
	err       error
	calls     int
}

func (c *stubCatalog) ListShowtimes(ctx context.Context) ([]model.Showtime, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.showtimes, nil
}

func (c *stubCatalog) ListProducts(ctx context.Context) ([]model.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.products, nil
}

func (c *stubCatalog) ListOffers(ctx context.Context) ([]model.Offer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.offers, nil
}

func (c *stubCatalog) setShowtimes(showtimes []model.Showtime) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showtimes = showtimes
}

func (c *stubCatalog) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// MockOrderSink is a mock implementation of OrderSink.
type MockOrderSink struct {
	mock.Mock
}

func (m *MockOrderSink) SubmitOrder(ctx context.Context, order *model.Order) (*model.OrderConfirmation, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderConfirmation), args.Error(1)
}

// MockCustomerStore is a mock implementation of CustomerStore.
type MockCustomerStore struct {
	mock.Mock
}

func (m *MockCustomerStore) FindByDocument(ctx context.Context, document string) (*model.Customer, error) {
	args := m.Called(ctx, document)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerStore) Create(ctx context.Context, customer *model.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

// MockPublisher is a mock implementation of EventPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderCompleted(ctx context.Context, receipt *model.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func testShowtime(id int64, price string, seats ...int) model.Showtime {
	return model.Showtime{
		ID:             id,
		Film:           model.Film{ID: 7, Title: "Bacurau"},
		Room:           model.Room{ID: 2, Number: 4},
		StartsAt:       time.Date(2024, 6, 1, 21, 0, 0, 0, time.UTC),
		TicketPrice:    decimal.RequireFromString(price),
		Language:       "Dublado",
		AvailableSeats: seats,
	}
}

func seatRange(from, to int) []int {
	seats := make([]int, 0, to-from+1)
	for n := from; n <= to; n++ {
		seats = append(seats, n)
	}
	return seats
}

func newTestCatalog() *stubCatalog {
	return &stubCatalog{
		showtimes: []model.Showtime{
			testShowtime(1, "30.00", seatRange(1, 20)...),
			testShowtime(2, "25.00", 1, 2, 3),
		},
		products: []model.Product{
			{ID: 10, Name: "Pipoca", Price: decimal.RequireFromString("20.00"), QtyAvailable: 5},
			{ID: 11, Name: "Refrigerante", Price: decimal.RequireFromString("8.50"), QtyAvailable: 0},
		},
		offers: []model.Offer{
			{
				ID:              1,
				ProductID:       10,
				StartsAt:        testNow.Add(-time.Hour),
				EndsAt:          testNow.Add(time.Hour),
				DiscountPercent: decimal.NewFromInt(20),
				Description:     "Pipoca 20% off",
			},
			{
				ID:              2,
				ProductID:       10,
				StartsAt:        testNow.Add(-48 * time.Hour),
				EndsAt:          testNow.Add(-24 * time.Hour),
				DiscountPercent: decimal.NewFromInt(50),
				Description:     "Expired",
			},
		},
	}
}

func testCustomer() model.Customer {
	return model.Customer{ID: 3, Document: "123.456.789-00", Name: "Maria Silva"}
}

func newTestSession(t *testing.T, catalog *stubCatalog, clk *clock.Fake) *Session {
	t.Helper()
	s, err := newSession(context.Background(), DefaultConfig(), clk, catalog, catalog, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func int64Ptr(v int64) *int64 {
	return &v
}
