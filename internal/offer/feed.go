package offer

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"cine-pos/internal/clock"
	"cine-pos/internal/model"

	"github.com/rs/zerolog"
)

// decodeFeed parses a gzipped stream holding one JSON offer per line.
func decodeFeed(ctx context.Context, r io.Reader) ([]model.Offer, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var offers []model.Offer
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var o model.Offer
		if err := json.Unmarshal([]byte(line), &o); err != nil {
			return nil, fmt.Errorf("malformed offer on line %d: %w", lineNo, err)
		}
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("invalid offer %d on line %d: %w", o.ID, lineNo, err)
		}
		offers = append(offers, o)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading offer feed: %w", err)
	}

	return offers, nil
}

// feedSource adapts a Loader bound to one path into a Source. A loaded feed
// is reused for ttl; a failed reload keeps serving the previous copy.
type feedSource struct {
	loader Loader
	path   string
	ttl    time.Duration
	clock  clock.Clock
	logger zerolog.Logger

	mu       sync.Mutex
	offers   []model.Offer
	loadedAt time.Time
	loaded   bool
}

// NewFeedSource returns a Source that reads the feed at path, downloading it
// at most once per ttl. A zero ttl reloads on every call.
func NewFeedSource(loader Loader, path string, ttl time.Duration, clk clock.Clock, logger zerolog.Logger) Source {
	return &feedSource{
		loader: loader,
		path:   path,
		ttl:    ttl,
		clock:  clk,
		logger: logger.With().Str("component", "offer-feed").Logger(),
	}
}

// ListOffers returns the cached feed, reloading it once the TTL has passed.
func (s *feedSource) ListOffers(ctx context.Context) ([]model.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if s.loaded && now.Sub(s.loadedAt) < s.ttl {
		return copyOffers(s.offers), nil
	}

	offers, err := s.loader.Load(ctx, s.path)
	if err != nil {
		if s.loaded {
			s.logger.Warn().
				Err(err).
				Str("path", s.path).
				Time("loaded_at", s.loadedAt).
				Msg("failed to reload offer feed, serving previous copy")
			return copyOffers(s.offers), nil
		}
		s.logger.Error().Err(err).Str("path", s.path).Msg("failed to load offer feed")
		return nil, err
	}

	s.offers = offers
	s.loadedAt = now
	s.loaded = true
	s.logger.Debug().Int("offers", len(offers)).Str("path", s.path).Msg("offer feed loaded")
	return copyOffers(offers), nil
}

func copyOffers(offers []model.Offer) []model.Offer {
	if offers == nil {
		return nil
	}
	out := make([]model.Offer, len(offers))
	copy(out, offers)
	return out
}
