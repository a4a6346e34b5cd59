package checkout

import (
	"context"
	"sync"
	"time"

	"cine-pos/internal/clock"
	"cine-pos/internal/model"
	"cine-pos/internal/offer"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const sweepInterval = time.Minute

// Registry tracks open sessions and ends the ones left idle.
type Registry struct {
	cfg     Config
	clock   clock.Clock
	catalog Catalog
	offers  offer.Source
	logger  zerolog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	sweeper  clock.Stopper
}

// NewRegistry creates a registry and starts the idle sweeper.
func NewRegistry(cfg Config, clk clock.Clock, catalog Catalog, offers offer.Source, logger zerolog.Logger) *Registry {
	r := &Registry{
		cfg:      cfg,
		clock:    clk,
		catalog:  catalog,
		offers:   offers,
		logger:   logger.With().Str("component", "session-registry").Logger(),
		sessions: make(map[uuid.UUID]*Session),
	}
	if cfg.IdleTimeout > 0 {
		r.sweeper = clk.Every(sweepInterval, r.sweep)
	}
	return r
}

// Open starts a new session with a fresh catalog snapshot.
func (r *Registry) Open(ctx context.Context) (*Session, error) {
	s, err := newSession(ctx, r.cfg, r.clock, r.catalog, r.offers, r.logger)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to open checkout session")
		return nil, err
	}
	s.onClose = r.forget

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	r.logger.Info().Str("session_id", s.id.String()).Msg("checkout session opened")
	return s, nil
}

// Get returns an open session.
func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return s, nil
}

// End closes and forgets a session.
func (r *Registry) End(id uuid.UUID) error {
	s, err := r.Get(id)
	if err != nil {
		return err
	}
	s.Close()
	return nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close stops the sweeper and ends every session.
func (r *Registry) Close() {
	if r.sweeper != nil {
		r.sweeper.Stop()
	}
	for _, s := range r.snapshot() {
		s.Close()
	}
}

// forget is called by a session while it holds its own lock, so it must
// not call back into the session.
func (r *Registry) forget(id uuid.UUID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *Registry) snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

func (r *Registry) sweep() {
	now := r.clock.Now()
	for _, s := range r.snapshot() {
		if now.Sub(s.IdleSince()) >= r.cfg.IdleTimeout {
			r.logger.Info().Str("session_id", s.id.String()).Msg("ending idle checkout session")
			s.Close()
		}
	}
}
