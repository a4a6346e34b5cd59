package repository

import (
	"context"
	"testing"

	"cine-pos/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerRepository_FindByDocument(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalog(t, pool)

	repo := NewCustomerRepository(pool, zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		name     string
		document string
		found    bool
	}{
		{name: "Existing customer", document: "123.456.789-00", found: true},
		{name: "Unknown document", document: "999.999.999-99", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := repo.FindByDocument(ctx, tt.document)

			require.NoError(t, err)
			if tt.found {
				require.NotNil(t, c)
				assert.Equal(t, "Maria Silva", c.Name)
				assert.NotZero(t, c.ID)
			} else {
				assert.Nil(t, c)
			}
		})
	}
}

func TestCustomerRepository_Create(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCustomerRepository(pool, zerolog.Nop())
	ctx := context.Background()

	c := &model.Customer{Document: "987.654.321-00", Name: "João Souza", Email: "joao@example.com"}
	require.NoError(t, repo.Create(ctx, c))
	assert.NotZero(t, c.ID)
	assert.False(t, c.CreatedAt.IsZero())

	found, err := repo.FindByDocument(ctx, c.Document)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, c.ID, found.ID)
	assert.Equal(t, "joao@example.com", found.Email)

	// Documents are unique
	err = repo.Create(ctx, &model.Customer{Document: c.Document, Name: "Other"})
	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeValidationFailed, domainErr.Code)
}
