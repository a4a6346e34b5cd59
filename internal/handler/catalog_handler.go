package handler

import (
	"context"
	"net/http"
	"strconv"

	"cine-pos/internal/clock"
	"cine-pos/internal/model"
	"cine-pos/internal/offer"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CatalogReader lists the sellable catalog.
type CatalogReader interface {
	ListShowtimes(ctx context.Context) ([]model.Showtime, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
}

// OrderReader looks up stored orders.
type OrderReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
}

// CatalogHandler serves the catalog and past orders.
type CatalogHandler struct {
	catalog CatalogReader
	offers  offer.Source
	orders  OrderReader
	clock   clock.Clock
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalog CatalogReader, offers offer.Source, orders OrderReader, clk clock.Clock, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		offers:  offers,
		orders:  orders,
		clock:   clk,
		logger:  logger.With().Str("handler", "catalog").Logger(),
	}
}

// ListShowtimes handles GET /api/showtimes requests.
func (h *CatalogHandler) ListShowtimes(w http.ResponseWriter, r *http.Request) {
	showtimes, err := h.catalog.ListShowtimes(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, showtimes)
}

// ListProducts handles GET /api/products requests.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// ListActiveOffers handles GET /api/products/{id}/offers requests.
func (h *CatalogHandler) ListActiveOffers(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid product ID format", h.logger)
		return
	}

	offers, err := h.offers.ListOffers(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, offer.Active(offers, productID, h.clock.Now()))
}

// GetOrder handles GET /api/orders/{id} requests.
func (h *CatalogHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid order ID format", h.logger)
		return
	}

	order, err := h.orders.GetByID(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	if order == nil {
		writeDomainError(w, model.ErrOrderNotFound, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
