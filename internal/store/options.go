package store

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aaronzipp/brisk/internal/game"
)

// DefaultInactiveRoomTTL is how long a started room may stay fully
// disconnected before it is pruned.
const DefaultInactiveRoomTTL = 15 * time.Minute

// Option configures a Registry.
type Option func(*Registry)

// WithTTL overrides DefaultInactiveRoomTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithRand sets the randomness used to deal and roll in every room.
func WithRand(rng game.Rand) Option {
	return func(r *Registry) {
		r.rng = rng
	}
}

// WithLogger sets the logger for room lifecycle events.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// WithLocale selects the language of objective texts in snapshots.
func WithLocale(locale string) Option {
	return func(r *Registry) {
		r.locale = locale
	}
}
