// Package orchestrator coordinates one discovery run: adapter fan-out with
// per-source failure isolation, AI enrichment under bounded concurrency,
// scoring, duplicate filtering, daily caps, and run finalization.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ideascout/internal/analyze"
	"ideascout/internal/config"
	"ideascout/internal/dedup"
	"ideascout/internal/model"
	"ideascout/internal/scoring"
	"ideascout/internal/sources"
	"ideascout/internal/storage"
)

// Options tunes a discovery orchestrator.
type Options struct {
	// EnrichmentWorkers bounds concurrent AI-backed enrichment; unbounded
	// fan-out across hundreds of candidates would trip provider rate limits.
	EnrichmentWorkers int
	// DuplicateThreshold is the similarity at or above which a candidate is
	// dropped as a duplicate.
	DuplicateThreshold float64
	// RecentSampleSize bounds the existing-ideas sample sent to the
	// duplicate detector.
	RecentSampleSize int
	// Now is injectable for daily-cap tests.
	Now func() time.Time
}

func (o *Options) fillDefaults() {
	if o.EnrichmentWorkers <= 0 {
		o.EnrichmentWorkers = 4
	}
	if o.DuplicateThreshold <= 0 {
		o.DuplicateThreshold = 85
	}
	if o.RecentSampleSize <= 0 {
		o.RecentSampleSize = 50
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Orchestrator runs the discovery pipeline for configured brands. All
// collaborators are injected; there are no process-wide singletons.
type Orchestrator struct {
	Brands   func(id string) (config.BrandConfig, bool)
	Sources  *sources.Registry
	Analyzer *analyze.Analyzer
	Detector *dedup.Detector
	Ideas    storage.IdeaStore
	Configs  storage.ConfigStore
	Runs     storage.RunStore
	Cache    *storage.Cache // optional
	Opts     Options
}

type sourceResult struct {
	name  string
	ideas []model.RawIdea
	err   error
}

// Run executes one discovery run for a brand. requested selects sources: nil
// or ["all"] means every source the brand's config enables. The returned run
// record is also persisted; the error is non-nil only for the structural
// failures that abort the run before any source executes.
func (o *Orchestrator) Run(ctx context.Context, brandID string, requested []string) (*model.DiscoveryRun, error) {
	o.Opts.fillDefaults()
	run := &model.DiscoveryRun{
		ID:        uuid.NewString(),
		BrandID:   brandID,
		Status:    model.RunPending,
		StartedAt: o.Opts.Now().UTC(),
	}

	brand, ok := o.Brands(brandID)
	if !ok {
		return o.fail(ctx, run, fmt.Errorf("unknown brand %q", brandID))
	}
	cfg, err := o.Configs.GetOrCreateWithDefaults(ctx, brandID)
	if err != nil {
		return o.fail(ctx, run, fmt.Errorf("resolve discovery config: %w", err))
	}

	run.Sources = o.resolveSources(cfg, requested)
	run.Status = model.RunRunning
	if err := o.Runs.CreateRun(ctx, run); err != nil {
		return o.fail(ctx, run, fmt.Errorf("record run start: %w", err))
	}
	slog.Info("discovery run started", "run", run.ID, "brand", brandID, "sources", run.Sources)

	results := o.fanOut(ctx, cfg, run.Sources)

	run.SourceStats = map[string]model.SourceStat{}
	sourceFailed := false
	for _, res := range results {
		stat := model.SourceStat{Found: len(res.ideas)}
		if res.err != nil {
			stat.Error = res.err.Error()
			run.Errors = append(run.Errors, fmt.Sprintf("%s: %v", res.name, res.err))
			sourceFailed = true
		}
		run.SourceStats[res.name] = stat
	}

	o.processCandidates(ctx, brand, cfg, run, results)

	run.FinishedAt = o.Opts.Now().UTC()
	if sourceFailed {
		run.Status = model.RunPartial
	} else {
		run.Status = model.RunCompleted
	}
	if err := o.Runs.FinalizeRun(ctx, run); err != nil {
		slog.Error("discovery run: finalize failed", "run", run.ID, "error", err)
	}
	slog.Info("discovery run finished", "run", run.ID, "status", run.Status,
		"persisted", run.Persisted, "duplicates", run.Duplicates,
		"below_min_score", run.BelowMinScore, "capped", run.Capped)
	return run, nil
}

func (o *Orchestrator) fail(ctx context.Context, run *model.DiscoveryRun, cause error) (*model.DiscoveryRun, error) {
	run.Status = model.RunFailed
	run.FinishedAt = o.Opts.Now().UTC()
	run.Errors = append(run.Errors, cause.Error())
	// Best effort: the run may fail before it was ever recorded.
	if err := o.Runs.CreateRun(ctx, run); err == nil {
		_ = o.Runs.FinalizeRun(ctx, run)
	}
	slog.Error("discovery run failed", "run", run.ID, "brand", run.BrandID, "error", cause)
	return run, cause
}

// resolveSources maps the request onto the closed adapter set: an explicit
// list is intersected with known adapters; empty or "all" means the config's
// enabled sources.
func (o *Orchestrator) resolveSources(cfg model.DiscoveryConfig, requested []string) []string {
	useAll := len(requested) == 0
	for _, r := range requested {
		if strings.EqualFold(strings.TrimSpace(r), "all") {
			useAll = true
		}
	}
	candidates := requested
	if useAll {
		candidates = cfg.EnabledSources
	}
	var out []string
	for _, name := range candidates {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, ok := o.Sources.Get(name); ok {
			out = append(out, name)
		}
	}
	return out
}

// fanOut invokes the selected adapters concurrently. Adapters share no
// mutable state; each slot in results belongs to exactly one goroutine. A
// panicking adapter is recorded as that source's error, not propagated.
func (o *Orchestrator) fanOut(ctx context.Context, cfg model.DiscoveryConfig, names []string) []sourceResult {
	results := make([]sourceResult, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		adapter, _ := o.Sources.Get(name)
		wg.Add(1)
		go func(i int, name string, adapter sources.Adapter) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = sourceResult{name: name, err: fmt.Errorf("adapter panic: %v", r)}
				}
			}()
			ideas, err := adapter.Discover(ctx, cfg)
			results[i] = sourceResult{name: name, ideas: ideas, err: err}
		}(i, name, adapter)
	}
	wg.Wait()
	return results
}

// processCandidates enriches, scores, and persists candidates from the
// successful adapters. AI stages run under a bounded pool; persistence is
// serialized so the daily cap check stays race free.
func (o *Orchestrator) processCandidates(ctx context.Context, brand config.BrandConfig, cfg model.DiscoveryConfig, run *model.DiscoveryRun, results []sourceResult) {
	recent := o.recentSample(ctx, brand.ID)
	dayStart := o.Opts.Now().UTC().Truncate(24 * time.Hour)
	dayCount, err := o.Ideas.CountSince(ctx, brand.ID, dayStart)
	if err != nil {
		slog.Error("discovery run: count today failed", "brand", brand.ID, "error", err)
		run.Errors = append(run.Errors, fmt.Sprintf("count today: %v", err))
		return
	}

	type enriched struct {
		raw       model.RawIdea
		adapter   sources.Adapter
		analysis  analyze.Analysis
		duplicate bool
		excluded  bool
	}

	var candidates []enriched
	for _, res := range results {
		if res.err != nil {
			continue
		}
		adapter, _ := o.Sources.Get(res.name)
		for _, raw := range res.ideas {
			candidates = append(candidates, enriched{raw: raw, adapter: adapter})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Opts.EnrichmentWorkers)
	for i := range candidates {
		c := &candidates[i]
		g.Go(func() error {
			if excludedByKeywords(c.raw, cfg.ExcludedKeywords) {
				c.excluded = true
				return nil
			}
			c.analysis = o.Analyzer.Analyze(gctx, c.raw, brand)
			text := c.raw.Title
			if c.raw.Description != "" {
				text += "\n" + c.raw.Description
			}
			matches := o.Detector.Detect(gctx, text, recent, brand.ID, brand.Provider)
			for _, m := range matches {
				if m.Similarity >= o.Opts.DuplicateThreshold {
					c.duplicate = true
					slog.Info("discovery run: duplicate skipped", "run", run.ID,
						"title", c.raw.Title, "of", m.IdeaID, "similarity", m.Similarity)
					break
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, c := range candidates {
		switch {
		case c.excluded:
			run.Excluded++
			continue
		case c.duplicate:
			run.Duplicates++
			continue
		}

		idea := o.buildIdea(brand.ID, c.raw, c.adapter, c.analysis, cfg)
		if idea.OverallScore < cfg.MinScore {
			run.BelowMinScore++
			continue
		}
		if dayCount >= cfg.MaxIdeasPerDay {
			// Still counted for run statistics; not persisted.
			run.Capped++
			continue
		}
		if err := o.Ideas.Create(ctx, &idea); err != nil {
			slog.Error("discovery run: persist failed", "run", run.ID, "title", idea.Title, "error", err)
			run.Errors = append(run.Errors, fmt.Sprintf("persist %q: %v", idea.Title, err))
			continue
		}
		dayCount++
		run.Persisted++
		if o.Cache != nil {
			if err := o.Cache.PushRecent(ctx, idea, o.Opts.RecentSampleSize); err != nil {
				slog.Warn("discovery run: cache update failed", "error", err)
			}
			if err := o.Cache.IncrDayCount(ctx, brand.ID, o.Opts.Now()); err != nil {
				slog.Warn("discovery run: cache counter failed", "error", err)
			}
		}
	}
}

// recentSample prefers the redis cache and falls back to the relational
// store. The sample is bounded; dedup is inherently partial by design.
func (o *Orchestrator) recentSample(ctx context.Context, brandID string) []model.Idea {
	if o.Cache != nil {
		if ideas, err := o.Cache.Recent(ctx, brandID, o.Opts.RecentSampleSize); err == nil && len(ideas) > 0 {
			return ideas
		}
	}
	ideas, err := o.Ideas.Recent(ctx, brandID, o.Opts.RecentSampleSize)
	if err != nil {
		slog.Warn("discovery run: recent sample unavailable", "brand", brandID, "error", err)
		return nil
	}
	return ideas
}

func (o *Orchestrator) buildIdea(brandID string, raw model.RawIdea, adapter sources.Adapter, analysis analyze.Analysis, cfg model.DiscoveryConfig) model.Idea {
	sub := model.SubScores{
		Virality:    adapter.Virality(raw),
		Relevance:   analysis.RelevanceScore,
		Competition: competitionScore(raw),
		Timeliness:  timelinessScore(raw),
	}
	overall := scoring.Overall(sub, cfg.Weights)

	metadata := map[string]any{"simulated": raw.Simulated}
	for k, v := range raw.Metrics {
		metadata[k] = v
	}
	if analysis.Degraded {
		metadata["analysis_degraded"] = true
	}

	idea := model.Idea{
		ID:           uuid.NewString(),
		BrandID:      brandID,
		Title:        raw.Title,
		Description:  raw.Description,
		Source:       raw.Source,
		SourceURL:    raw.URL,
		Metadata:     metadata,
		DiscoveredAt: o.Opts.Now().UTC(),
		Scores:       sub,
		OverallScore: overall,
		Priority:     scoring.Priority(overall),
		Status:       model.StatusNew,
		Keywords:     analysis.Keywords,
		Platforms:    analysis.TargetPlatforms,
		Category:     analysis.Category,
		ContentType:  analysis.ContentType,
		Brief:        analysis.Brief,
	}
	if len(analysis.Insights) > 0 {
		idea.Research = map[string]any{"insights": analysis.Insights}
	}
	return idea
}

// competitionScore inverts saturation signals: crowded conversations score
// low because the topic is harder to stand out in.
func competitionScore(raw model.RawIdea) float64 {
	if c := raw.Metric("competition"); c > 0 {
		return scoring.Clamp((1-c)*100, 0, 100)
	}
	comments := raw.Metric("comments") + raw.Metric("replies") + raw.Metric("answers")
	return scoring.Clamp(100-comments/5, 0, 100)
}

// timelinessScore decays from 100 to 0 over a week since publication.
func timelinessScore(raw model.RawIdea) float64 {
	if raw.PublishedAt.IsZero() {
		return 50
	}
	age := time.Since(raw.PublishedAt)
	if age < 0 {
		age = 0
	}
	week := 7 * 24 * time.Hour
	if age >= week {
		return 0
	}
	return scoring.Clamp(100*(1-age.Seconds()/week.Seconds()), 0, 100)
}

func excludedByKeywords(raw model.RawIdea, excluded []string) bool {
	if len(excluded) == 0 {
		return false
	}
	text := strings.ToLower(raw.Title + " " + raw.Description)
	for _, kw := range excluded {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
