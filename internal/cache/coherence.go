package cache

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tracker/internal/events"
)

var evictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tracker_cache_evictions_total",
	Help: "Cache evictions performed by the coherence manager, by trigger",
}, []string{"trigger"})

// Coherence evicts cache entries in response to update events so cached reads
// stay coherent with the system of record. Eviction is best-effort and
// idempotent; a missed eviction results in at most one stale read, bounded by
// the entry's TTL. There is deliberately no retry and no durable queue.
type Coherence struct {
	cache  Cache
	logger *slog.Logger
}

func NewCoherence(cache Cache, logger *slog.Logger) *Coherence {
	return &Coherence{cache: cache, logger: logger}
}

// Register wires the coherence manager onto the bus. Called once at startup.
func (c *Coherence) Register(bus *events.Bus) {
	bus.Subscribe(events.TypeProjectUpdated, "cache-coherence", c.handleProjectUpdated)
	bus.Subscribe(events.TypeUserUpdated, "cache-coherence", c.handleUserUpdated)
}

// handleProjectUpdated always evicts the project-detail entry: even a
// metadata-only change (updated_at) must not be served stale on a point
// lookup. Listing and status partitions embed name/status, so they are only
// evicted when one of those fields changed.
func (c *Coherence) handleProjectUpdated(ctx context.Context, event events.Event) error {
	e, ok := event.(events.ProjectUpdated)
	if !ok {
		return nil
	}

	evictionsTotal.WithLabelValues("project_updated").Inc()
	err := c.cache.Evict(ctx, ProjectKey(e.ProjectID))

	if e.RequiresFullEviction() {
		err = errors.Join(err,
			c.cache.EvictByPrefix(ctx, ProjectListPrefix),
			c.cache.EvictByPrefix(ctx, ProjectStatusPrefix),
			c.cache.Evict(ctx, ProjectTasksKey(e.ProjectID)),
		)
	}

	c.logger.Debug("evicted project cache entries",
		"project_id", e.ProjectID,
		"full_eviction", e.RequiresFullEviction(),
	)
	return err
}

// handleUserUpdated evicts the user-detail entry and, when email or role
// changed, the auth-cache entries for both the previous and current email.
// Auth lookups are keyed by email, and evicting both sides closes the window
// where a login under the old address would see stale role data.
func (c *Coherence) handleUserUpdated(ctx context.Context, event events.Event) error {
	e, ok := event.(events.UserUpdated)
	if !ok {
		return nil
	}

	evictionsTotal.WithLabelValues("user_updated").Inc()
	keys := []string{UserKey(e.UserID)}
	if e.RequiresAuthEviction() {
		if e.PreviousEmail != "" {
			keys = append(keys, AuthKey(e.PreviousEmail))
		}
		if e.Email != "" && e.Email != e.PreviousEmail {
			keys = append(keys, AuthKey(e.Email))
		}
	}

	err := c.cache.Evict(ctx, keys...)

	c.logger.Debug("evicted user cache entries",
		"user_id", e.UserID,
		"auth_eviction", e.RequiresAuthEviction(),
	)
	return err
}
