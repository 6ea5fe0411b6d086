package ai

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// Registry resolves a brand's configured provider, falling back to a default
// when the brand does not name one. Providers are injected explicitly rather
// than looked up from process-wide singletons, so tests can substitute fakes.
type Registry struct {
	providers   map[string]ProviderClient
	defaultName string

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewRegistry builds a registry. defaultName selects the fallback provider;
// rps/burst bound per-brand call rates against downstream provider limits
// (rps <= 0 disables limiting).
func NewRegistry(defaultName string, rps float64, burst int) *Registry {
	lim := rate.Limit(rps)
	if rps <= 0 {
		lim = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &Registry{
		providers:   map[string]ProviderClient{},
		defaultName: defaultName,
		limiters:    map[string]*rate.Limiter{},
		rps:         lim,
		burst:       burst,
	}
}

// Register adds a provider under its name.
func (r *Registry) Register(p ProviderClient) {
	r.providers[p.Name()] = p
}

// Resolve returns the provider for the given name, or the default provider
// when the name is empty or unknown.
func (r *Registry) Resolve(name string) (ProviderClient, error) {
	if p, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p, nil
	}
	if p, ok := r.providers[r.defaultName]; ok {
		return p, nil
	}
	return nil, ErrNoProvider
}

// Wait blocks until the brand's rate limiter admits one call, or the context
// is cancelled.
func (r *Registry) Wait(ctx context.Context, brandID string) error {
	r.mu.Lock()
	lim, ok := r.limiters[brandID]
	if !ok {
		lim = rate.NewLimiter(r.rps, r.burst)
		r.limiters[brandID] = lim
	}
	r.mu.Unlock()
	return lim.Wait(ctx)
}
