package router

import (
	"net/http"

	"cine-pos/internal/handler"
	"cine-pos/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	catalogHandler *handler.CatalogHandler,
	customerHandler *handler.CustomerHandler,
	sessionHandler *handler.SessionHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Catalog
	mux.HandleFunc("GET /api/showtimes", catalogHandler.ListShowtimes)
	mux.HandleFunc("GET /api/products", catalogHandler.ListProducts)
	mux.HandleFunc("GET /api/products/{id}/offers", catalogHandler.ListActiveOffers)
	mux.HandleFunc("GET /api/orders/{id}", catalogHandler.GetOrder)

	// Customers
	mux.HandleFunc("POST /api/customers", customerHandler.Register)
	mux.HandleFunc("GET /api/customers/{document}", customerHandler.GetByDocument)

	// Checkout sessions
	mux.HandleFunc("POST /api/sessions", sessionHandler.Open)
	mux.HandleFunc("GET /api/sessions/{id}", sessionHandler.Get)
	mux.HandleFunc("DELETE /api/sessions/{id}", sessionHandler.End)
	mux.HandleFunc("GET /api/sessions/{id}/showtimes", sessionHandler.Showtimes)
	mux.HandleFunc("GET /api/sessions/{id}/products/{productId}/offers", sessionHandler.ActiveOffers)
	mux.HandleFunc("POST /api/sessions/{id}/tickets", sessionHandler.AddTicket)
	mux.HandleFunc("POST /api/sessions/{id}/reservation", sessionHandler.Reserve)
	mux.HandleFunc("DELETE /api/sessions/{id}/reservation", sessionHandler.CancelReservation)
	mux.HandleFunc("POST /api/sessions/{id}/products", sessionHandler.AddProduct)
	mux.HandleFunc("PATCH /api/sessions/{id}/items/{index}", sessionHandler.UpdateItem)
	mux.HandleFunc("DELETE /api/sessions/{id}/items/{index}", sessionHandler.RemoveItem)
	mux.HandleFunc("PUT /api/sessions/{id}/customer", sessionHandler.SetCustomer)
	mux.HandleFunc("POST /api/sessions/{id}/checkout", sessionHandler.Checkout)

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
