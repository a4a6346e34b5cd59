package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cine-pos/internal/checkout"
	"cine-pos/internal/clock"
	"cine-pos/internal/handler"
	"cine-pos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

var testNow = time.Date(2024, 6, 1, 19, 0, 0, 0, time.UTC)

// memoryStore backs every store interface the handlers need.
type memoryStore struct {
	customers map[string]model.Customer
	orders    map[uuid.UUID]*model.Order
}

func (s *memoryStore) ListShowtimes(ctx context.Context) ([]model.Showtime, error) {
	return []model.Showtime{{
		ID:             1,
		Film:           model.Film{ID: 1, Title: "Bacurau"},
		Room:           model.Room{ID: 1, Number: 4},
		StartsAt:       testNow.Add(2 * time.Hour),
		TicketPrice:    decimal.RequireFromString("30.00"),
		AvailableSeats: []int{1, 2, 3},
	}}, nil
}

func (s *memoryStore) ListProducts(ctx context.Context) ([]model.Product, error) {
	return []model.Product{{ID: 10, Name: "Pipoca", Price: decimal.RequireFromString("20.00"), QtyAvailable: 5}}, nil
}

func (s *memoryStore) ListOffers(ctx context.Context) ([]model.Offer, error) {
	return nil, nil
}

func (s *memoryStore) FindByDocument(ctx context.Context, document string) (*model.Customer, error) {
	c, ok := s.customers[document]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *memoryStore) Create(ctx context.Context, customer *model.Customer) error {
	customer.ID = int64(len(s.customers) + 1)
	s.customers[customer.Document] = *customer
	return nil
}

func (s *memoryStore) SubmitOrder(ctx context.Context, order *model.Order) (*model.OrderConfirmation, error) {
	s.orders[order.ID] = order
	return &model.OrderConfirmation{OrderID: order.ID, ConfirmedAt: order.CreatedAt}, nil
}

func (s *memoryStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return s.orders[id], nil
}

func newTestRouter(t *testing.T) http.Handler {
	logger := zerolog.Nop()
	clk := clock.NewFake(testNow)
	store := &memoryStore{customers: map[string]model.Customer{}, orders: map[uuid.UUID]*model.Order{}}

	registry := checkout.NewRegistry(checkout.DefaultConfig(), clk, store, store, logger)
	t.Cleanup(registry.Close)
	service := checkout.NewService(store, store, nil, clk, logger)

	return New(
		handler.NewCatalogHandler(store, store, store, clk, logger),
		handler.NewCustomerHandler(service, logger),
		handler.NewSessionHandler(registry, service, logger),
		testAPIKey,
		logger,
	)
}

func send(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthWithoutKey(t *testing.T) {
	h := newTestRouter(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RequiresAPIKey(t *testing.T) {
	h := newTestRouter(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/showtimes", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.ErrCodeUnauthorised, resp.Error)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h := newTestRouter(t)

	w := send(h, http.MethodPut, "/api/showtimes", "")

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouter_OrderNotFound(t *testing.T) {
	h := newTestRouter(t)

	w := send(h, http.MethodGet, "/api/orders/"+uuid.NewString(), "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_SaleFlow(t *testing.T) {
	h := newTestRouter(t)

	w := send(h, http.MethodPost, "/api/customers", `{"document":"123.456.789-00","name":"Maria Silva"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = send(h, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var view checkout.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	base := "/api/sessions/" + view.ID.String()

	w = send(h, http.MethodPost, base+"/reservation", `{"showtimeId":1,"seat":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = send(h, http.MethodPost, base+"/products", `{"productId":10}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = send(h, http.MethodPut, base+"/customer", `{"document":"123.456.789-00"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = send(h, http.MethodPost, base+"/checkout", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var receipt model.Receipt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &receipt))
	assert.Equal(t, "Maria Silva", receipt.CustomerName)
	assert.True(t, decimal.RequireFromString("50").Equal(receipt.Total))
	assert.Len(t, receipt.Items, 2)

	w = send(h, http.MethodGet, "/api/orders/"+receipt.OrderID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(h, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
