package handler

import (
	"context"
	"net/http"

	"cine-pos/internal/model"

	"github.com/rs/zerolog"
)

// CustomerService looks up and registers customers.
type CustomerService interface {
	FindCustomer(ctx context.Context, document string) (*model.Customer, error)
	RegisterCustomer(ctx context.Context, req *model.CustomerRequest) (*model.Customer, error)
}

// CustomerHandler handles customer-related HTTP requests.
type CustomerHandler struct {
	service CustomerService
	logger  zerolog.Logger
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(service CustomerService, logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		logger:  logger.With().Str("handler", "customer").Logger(),
	}
}

// Register handles POST /api/customers requests.
func (h *CustomerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.CustomerRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	customer, err := h.service.RegisterCustomer(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

// GetByDocument handles GET /api/customers/{document} requests.
func (h *CustomerHandler) GetByDocument(w http.ResponseWriter, r *http.Request) {
	customer, err := h.service.FindCustomer(r.Context(), r.PathValue("document"))
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}
