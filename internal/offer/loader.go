package offer

import (
	"context"
	"fmt"
	"os"

	"cine-pos/internal/model"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for gzipped offer feeds on local disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based offer loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "offer-loader").Logger(),
	}
}

// Load reads a gzipped offer feed from filePath.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]model.Offer, error) {
	l.logger.Debug().Str("file", filePath).Msg("loading offer feed")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open offer feed")
		return nil, fmt.Errorf("failed to open offer feed %s: %w", filePath, err)
	}
	defer file.Close()

	offers, err := decodeFeed(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to decode offer feed")
		return nil, fmt.Errorf("offer feed %s: %w", filePath, err)
	}

	l.logger.Debug().
		Str("file", filePath).
		Int("offers_loaded", len(offers)).
		Msg("offer feed loaded")

	return offers, nil
}
