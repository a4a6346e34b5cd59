package handler

import (
	"context"
	"net/http"
	"strconv"

	"cine-pos/internal/checkout"
	"cine-pos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionStore opens and tracks checkout sessions.
type SessionStore interface {
	Open(ctx context.Context) (*checkout.Session, error)
	Get(id uuid.UUID) (*checkout.Session, error)
	End(id uuid.UUID) error
}

// CheckoutService completes sessions and resolves their customer.
type CheckoutService interface {
	Checkout(ctx context.Context, sess *checkout.Session) (*model.Receipt, error)
	FindCustomer(ctx context.Context, document string) (*model.Customer, error)
}

// SeatRequest selects a seat of a showtime.
type SeatRequest struct {
	ShowtimeID int64 `json:"showtimeId"`
	Seat       int   `json:"seat"`
}

// ProductRequest adds one unit of a product, optionally under an offer.
type ProductRequest struct {
	ProductID int64  `json:"productId"`
	OfferID   *int64 `json:"offerId,omitempty"`
}

// QuantityRequest sets a product line quantity.
type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CustomerSelection attaches a registered customer by document.
type CustomerSelection struct {
	Document string `json:"document"`
}

// SessionHandler drives checkout sessions over HTTP. Mutations answer with
// the updated session view.
type SessionHandler struct {
	sessions SessionStore
	checkout CheckoutService
	logger   zerolog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions SessionStore, checkout CheckoutService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		checkout: checkout,
		logger:   logger.With().Str("handler", "session").Logger(),
	}
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*checkout.Session, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid session ID format", h.logger)
		return nil, false
	}
	sess, err := h.sessions.Get(id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return nil, false
	}
	return sess, true
}

func (h *SessionHandler) respond(w http.ResponseWriter, sess *checkout.Session, err error) {
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	view, err := sess.View()
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func pathIndex(r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	return index, err == nil
}

// Open handles POST /api/sessions requests.
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Open(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	view, err := sess.View()
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// Get handles GET /api/sessions/{id} requests.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respond(w, sess, nil)
}

// End handles DELETE /api/sessions/{id} requests.
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid session ID format", h.logger)
		return
	}
	if err := h.sessions.End(id); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Showtimes handles GET /api/sessions/{id}/showtimes requests.
func (h *SessionHandler) Showtimes(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	showtimes, err := sess.Showtimes()
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, showtimes)
}

// ActiveOffers handles GET /api/sessions/{id}/products/{productId}/offers requests.
func (h *SessionHandler) ActiveOffers(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	productID, err := strconv.ParseInt(r.PathValue("productId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid product ID format", h.logger)
		return
	}
	offers, err := sess.ActiveOffers(productID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, offers)
}

// AddTicket handles POST /api/sessions/{id}/tickets requests.
func (h *SessionHandler) AddTicket(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SeatRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	h.respond(w, sess, sess.AddTicket(req.ShowtimeID, req.Seat))
}

// Reserve handles POST /api/sessions/{id}/reservation requests.
func (h *SessionHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SeatRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	_, err := sess.Reserve(req.ShowtimeID, req.Seat)
	h.respond(w, sess, err)
}

// CancelReservation handles DELETE /api/sessions/{id}/reservation requests.
func (h *SessionHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	_, err := sess.CancelReservation()
	h.respond(w, sess, err)
}

// AddProduct handles POST /api/sessions/{id}/products requests.
func (h *SessionHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req ProductRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	h.respond(w, sess, sess.AddProduct(req.ProductID, req.OfferID))
}

// UpdateItem handles PATCH /api/sessions/{id}/items/{index} requests.
func (h *SessionHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	index, ok := pathIndex(r)
	if !ok {
		writeDomainError(w, model.ErrItemNotFound, h.logger)
		return
	}
	var req QuantityRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	h.respond(w, sess, sess.UpdateQuantity(index, req.Quantity))
}

// RemoveItem handles DELETE /api/sessions/{id}/items/{index} requests.
func (h *SessionHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	index, ok := pathIndex(r)
	if !ok {
		writeDomainError(w, model.ErrItemNotFound, h.logger)
		return
	}
	h.respond(w, sess, sess.RemoveItem(index))
}

// SetCustomer handles PUT /api/sessions/{id}/customer requests.
func (h *SessionHandler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req CustomerSelection
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	customer, err := h.checkout.FindCustomer(r.Context(), req.Document)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	h.respond(w, sess, sess.SetCustomer(*customer))
}

// Checkout handles POST /api/sessions/{id}/checkout requests.
func (h *SessionHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	receipt, err := h.checkout.Checkout(r.Context(), sess)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}
