// Package sources contains the six signal-source adapters. Every adapter
// normalizes its upstream's records into model.RawIdea and exposes a pure
// capped-additive virality heuristic on the common 0-100 scale, so the scoring
// engine can combine heterogeneous sources without a global normalization pass.
package sources

import (
	"context"
	"time"

	"ideascout/internal/model"
)

// Adapter fetches raw signals from one external source.
//
// Discover returns whatever it could collect. When credentials are absent the
// adapter switches to explicit degraded mode and returns deterministic
// placeholder records flagged Simulated, with no error. A genuine fetch
// failure returns an error; the orchestrator records it per source and keeps
// going with the remaining sources.
type Adapter interface {
	Name() string
	Discover(ctx context.Context, cfg model.DiscoveryConfig) ([]model.RawIdea, error)
	Virality(r model.RawIdea) float64
}

// Registry holds the closed set of adapters keyed by source name.
type Registry struct {
	adapters map[string]Adapter
	order    []string
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: map[string]Adapter{}}
	for _, a := range adapters {
		if _, ok := r.adapters[a.Name()]; !ok {
			r.order = append(r.order, a.Name())
		}
		r.adapters[a.Name()] = a
	}
	return r
}

// Get returns the adapter for a source name.
func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// Select returns the adapters for the given names, dropping unknown ones.
func (r *Registry) Select(names []string) []Adapter {
	var out []Adapter
	for _, n := range names {
		if a, ok := r.adapters[n]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Names lists registered source names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// scaledCap maps an absolute engagement value onto a bounded sub-term.
func scaledCap(value, scale, cap float64) float64 {
	v := value * scale
	if v < 0 {
		return 0
	}
	if v > cap {
		return cap
	}
	return v
}

// recencyBonus decays linearly from max to 0 over the window.
func recencyBonus(publishedAt time.Time, window time.Duration, max float64) float64 {
	if publishedAt.IsZero() {
		return 0
	}
	age := time.Since(publishedAt)
	if age < 0 {
		return max
	}
	if age >= window {
		return 0
	}
	return max * (1 - age.Seconds()/window.Seconds())
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
