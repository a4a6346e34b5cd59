package model

import (
	"regexp"
	"strings"
	"time"
)

var documentPattern = regexp.MustCompile(`^\d{3}\.\d{3}\.\d{3}-\d{2}$`)

// Customer is the buyer attached to a sale, identified by CPF.
type Customer struct {
	ID        int64     `json:"id" db:"id"`
	Document  string    `json:"document" db:"document"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email,omitempty" db:"email"`
	Phone     string    `json:"phone,omitempty" db:"phone"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CustomerRequest holds the fields for registering a customer inline.
type CustomerRequest struct {
	Document string `json:"document"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// ValidDocument reports whether doc is formatted as NNN.NNN.NNN-NN.
func ValidDocument(doc string) bool {
	return documentPattern.MatchString(doc)
}

// Validate checks the registration fields.
func (r *CustomerRequest) Validate() error {
	if !ValidDocument(r.Document) {
		return ErrInvalidDocument
	}
	if strings.TrimSpace(r.Name) == "" {
		return NewDomainError(ErrCodeMissingField, "Customer name is required")
	}
	return nil
}
