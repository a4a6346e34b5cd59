package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeCustomerRequired   = "CUSTOMER_REQUIRED"
	ErrCodeInvalidDocument    = "INVALID_DOCUMENT"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeAlreadyInCart      = "ALREADY_IN_CART"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeItemNotFound       = "ITEM_NOT_FOUND"
	ErrCodeShowtimeNotFound   = "SHOWTIME_NOT_FOUND"
	ErrCodeSeatUnavailable    = "SEAT_UNAVAILABLE"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeOfferNotApplicable = "OFFER_NOT_APPLICABLE"
	ErrCodeCustomerNotFound   = "CUSTOMER_NOT_FOUND"
	ErrCodeSessionNotFound    = "SESSION_NOT_FOUND"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeSessionClosed      = "SESSION_CLOSED"
	ErrCodeSeatConflict       = "SEAT_CONFLICT"
	ErrCodeOutOfStock         = "OUT_OF_STOCK"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrCustomerRequired   = NewDomainError(ErrCodeCustomerRequired, "Select a customer to continue")
	ErrInvalidDocument    = NewDomainError(ErrCodeInvalidDocument, "Document must match NNN.NNN.NNN-NN")
	ErrEmptyCart          = NewDomainError(ErrCodeEmptyCart, "Add items to the cart before checking out")
	ErrAlreadyInCart      = NewDomainError(ErrCodeAlreadyInCart, "This seat is already in the cart")
	ErrInvalidQuantity    = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be at least one")
	ErrItemNotFound       = NewDomainError(ErrCodeItemNotFound, "Cart item not found")
	ErrShowtimeNotFound   = NewDomainError(ErrCodeShowtimeNotFound, "Showtime not found")
	ErrSeatUnavailable    = NewDomainError(ErrCodeSeatUnavailable, "Seat is not available for this showtime")
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrOfferNotApplicable = NewDomainError(ErrCodeOfferNotApplicable, "Offer is not active for this product")
	ErrCustomerNotFound   = NewDomainError(ErrCodeCustomerNotFound, "Customer not found")
	ErrSessionNotFound    = NewDomainError(ErrCodeSessionNotFound, "Checkout session not found")
	ErrOrderNotFound      = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrSessionClosed      = NewDomainError(ErrCodeSessionClosed, "Checkout session has ended")
	ErrSeatConflict       = NewDomainError(ErrCodeSeatConflict, "This seat is no longer available, please choose another")
	ErrOutOfStock         = NewDomainError(ErrCodeOutOfStock, "Not enough stock for one or more products")
)

// SeatConflictError reports the seat that was taken concurrently at
// submission time. It matches ErrSeatConflict with errors.Is.
type SeatConflictError struct {
	ShowtimeID int64
	Seat       int
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat %d of showtime %d is no longer available", e.Seat, e.ShowtimeID)
}

// Unwrap returns ErrSeatConflict.
func (e *SeatConflictError) Unwrap() error {
	return ErrSeatConflict
}
