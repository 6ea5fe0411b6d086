// Package storage persists ideas, per-brand discovery configs, and run
// records. The relational store is SQLite; redis supplies fast daily counters
// and a recent-ideas cache for duplicate sampling.
package storage

import (
	"context"
	"errors"
	"time"

	"ideascout/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("storage: not found")

// IdeaStore persists discovered ideas.
type IdeaStore interface {
	Create(ctx context.Context, idea *model.Idea) error
	// Recent returns the brand's most recently discovered ideas, newest
	// first, bounded by limit. Used as the duplicate-detection sample.
	Recent(ctx context.Context, brandID string, limit int) ([]model.Idea, error)
	// CountSince counts ideas discovered at or after the cutoff; the daily
	// cap is enforced against the start of the current UTC day.
	CountSince(ctx context.Context, brandID string, cutoff time.Time) (int, error)
	FindByBrand(ctx context.Context, brandID string, status model.Status, limit int) ([]model.Idea, error)
}

// ConfigStore persists per-brand discovery policy.
type ConfigStore interface {
	// GetOrCreateWithDefaults returns the brand's config, creating it with
	// the documented defaults when absent.
	GetOrCreateWithDefaults(ctx context.Context, brandID string) (model.DiscoveryConfig, error)
	Update(ctx context.Context, cfg model.DiscoveryConfig) error
}

// RunStore records discovery runs.
type RunStore interface {
	CreateRun(ctx context.Context, run *model.DiscoveryRun) error
	FinalizeRun(ctx context.Context, run *model.DiscoveryRun) error
	FindRunsByBrand(ctx context.Context, brandID string, limit int) ([]model.DiscoveryRun, error)
}
