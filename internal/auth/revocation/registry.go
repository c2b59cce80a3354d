// Package revocation tracks access tokens invalidated before their natural
// expiry (logout, account deletion). Entries live in memory and are swept
// once their recorded expiry passes, so the set stays bounded by the access
// token TTL.
package revocation

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultSweepInterval is how often expired entries are purged.
const DefaultSweepInterval = time.Hour

// Registry is a concurrency-safe blacklist of revoked access tokens keyed by
// the signed token string.
type Registry struct {
	mu     sync.RWMutex
	tokens map[string]time.Time // token -> expiry

	logger   *slog.Logger
	interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewRegistry creates a registry sweeping at interval. An interval of zero
// or less falls back to DefaultSweepInterval.
func NewRegistry(logger *slog.Logger, interval time.Duration) *Registry {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &Registry{
		tokens:   make(map[string]time.Time),
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Add records token as revoked until expiresAt. Tokens already past expiry
// are still recorded; the next sweep removes them.
func (r *Registry) Add(token string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = expiresAt
}

// Contains reports whether token is currently revoked. Entries past their
// expiry are treated as absent even before the sweeper runs.
func (r *Registry) Contains(token string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exp, ok := r.tokens[token]
	if !ok {
		return false
	}
	return time.Now().Before(exp)
}

// Remove drops a single token from the registry.
func (r *Registry) Remove(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
}

// Clear empties the registry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = make(map[string]time.Time)
}

// Len returns the number of tracked tokens, expired entries included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}

// Start begins the background sweeper. Non-blocking; call Stop to shut down.
func (r *Registry) Start() {
	go r.run()
	r.logger.Info("revocation registry started", "sweep_interval", r.interval)
}

// Stop shuts the sweeper down and blocks until it has finished.
func (r *Registry) Stop() {
	close(r.stopCh)
	<-r.doneCh
	r.logger.Info("revocation registry stopped")
}

func (r *Registry) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep(time.Now())
		case <-r.stopCh:
			return
		}
	}
}

// sweep removes entries whose expiry has passed at now.
func (r *Registry) sweep(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int
	for token, exp := range r.tokens {
		if !now.Before(exp) {
			delete(r.tokens, token)
			removed++
		}
	}

	if removed > 0 {
		r.logger.Debug("swept expired revocations", "removed", removed, "remaining", len(r.tokens))
	}
}
