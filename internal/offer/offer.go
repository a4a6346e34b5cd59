package offer

import (
	"context"

	"cine-pos/internal/model"
)

// Source supplies the current list of offers. The catalog repository and
// the feed loaders both satisfy it.
type Source interface {
	// ListOffers returns every known offer, active or not.
	ListOffers(ctx context.Context) ([]model.Offer, error)
}

// Loader reads an offer feed from a path or object key.
type Loader interface {
	// Load reads a gzipped JSON-lines offer feed.
	Load(ctx context.Context, path string) ([]model.Offer, error)
}
