package offer

import (
	"context"
	"errors"
	"testing"

	"cine-pos/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLoader is a mock implementation of the Loader interface for testing.
type mockLoader struct {
	loadFunc func(ctx context.Context, path string) ([]model.Offer, error)
}

func (m *mockLoader) Load(ctx context.Context, path string) ([]model.Offer, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, path)
	}
	return nil, errors.New("not implemented")
}

func TestFallbackLoader_PrimarySuccess(t *testing.T) {
	primary := &mockLoader{
		loadFunc: func(ctx context.Context, path string) ([]model.Offer, error) {
			assert.Equal(t, "offers/current.gz", path)
			return []model.Offer{{ID: 1}}, nil
		},
	}
	local := &mockLoader{
		loadFunc: func(ctx context.Context, path string) ([]model.Offer, error) {
			t.Error("local loader should not be called when primary succeeds")
			return nil, errors.New("should not be called")
		},
	}

	loader := NewFallbackLoader(primary, local, "data/offers.gz", zerolog.Nop())

	offers, err := loader.Load(context.Background(), "offers/current.gz")
	require.NoError(t, err)
	assert.Len(t, offers, 1)
}

func TestFallbackLoader_PrimaryFailsFallsBackToLocal(t *testing.T) {
	primary := &mockLoader{
		loadFunc: func(ctx context.Context, path string) ([]model.Offer, error) {
			return nil, errors.New("access denied")
		},
	}
	local := &mockLoader{
		loadFunc: func(ctx context.Context, path string) ([]model.Offer, error) {
			assert.Equal(t, "data/offers.gz", path)
			return []model.Offer{{ID: 2}}, nil
		},
	}

	loader := NewFallbackLoader(primary, local, "data/offers.gz", zerolog.Nop())

	offers, err := loader.Load(context.Background(), "offers/current.gz")
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, int64(2), offers[0].ID)
}

func TestFallbackLoader_NilPrimary(t *testing.T) {
	called := false
	local := &mockLoader{
		loadFunc: func(ctx context.Context, path string) ([]model.Offer, error) {
			called = true
			return nil, nil
		},
	}

	loader := NewFallbackLoader(nil, local, "data/offers.gz", zerolog.Nop())

	_, err := loader.Load(context.Background(), "offers/current.gz")
	require.NoError(t, err)
	assert.True(t, called)
}

func TestFallbackLoader_BothUnavailable(t *testing.T) {
	primary := &mockLoader{
		loadFunc: func(ctx context.Context, path string) ([]model.Offer, error) {
			return nil, errors.New("timeout")
		},
	}

	loader := NewFallbackLoader(primary, &mockLoader{}, "", zerolog.Nop())

	offers, err := loader.Load(context.Background(), "offers/current.gz")
	require.Error(t, err)
	assert.Nil(t, offers)
	assert.Contains(t, err.Error(), "no local offer feed configured")
}
