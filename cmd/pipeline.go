package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"ideascout/internal/ai"
	"ideascout/internal/analyze"
	"ideascout/internal/config"
	"ideascout/internal/dedup"
	"ideascout/internal/orchestrator"
	"ideascout/internal/redisclient"
	"ideascout/internal/sources"
	"ideascout/internal/storage"
)

// pipeline bundles the wired components shared by discover and serve.
type pipeline struct {
	cfg   config.Config
	store *storage.SQLiteStore
	rdb   *redis.Client
	orch  *orchestrator.Orchestrator
}

func newPipeline(cfg config.Config) (*pipeline, error) {
	store, err := storage.OpenSQLite(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	// Redis is an optional accelerator; the pipeline runs without it.
	var cache *storage.Cache
	rdb := redisclient.New(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Warn("redis unavailable, running without cache", "addr", cfg.Redis.Addr, "error", err)
		rdb.Close()
		rdb = nil
	} else {
		cache = storage.NewCache(rdb)
	}
	cancel()

	providers := ai.NewRegistry(cfg.Providers.Default, cfg.Providers.RateRPS, cfg.Providers.RateBurst)
	if cfg.Providers.OpenAI.APIKey != "" {
		providers.Register(ai.NewOpenAI(ai.OpenAIConfig{
			APIKey:  cfg.Providers.OpenAI.APIKey,
			Model:   cfg.Providers.OpenAI.Model,
			BaseURL: cfg.Providers.OpenAI.BaseURL,
		}))
	}
	if cfg.Providers.Anthropic.APIKey != "" {
		providers.Register(ai.NewAnthropic(ai.AnthropicConfig{
			APIKey: cfg.Providers.Anthropic.APIKey,
			Model:  cfg.Providers.Anthropic.Model,
		}))
	}

	registry := sources.NewRegistry(
		sources.NewForumAdapter(cfg.Sources.ForumBaseURL, cfg.Sources.ForumUserAgent),
		sources.NewVideoAdapter(cfg.Sources.VideoBaseURL, cfg.Sources.VideoAPIKey),
		sources.NewMicroblogAdapter(cfg.Sources.MicroblogBaseURL, cfg.Sources.MicroblogToken),
		sources.NewKeywordAdapter(cfg.Sources.KeywordsBaseURL, cfg.Sources.KeywordsAPIKey),
		sources.NewQnAAdapter(cfg.Sources.QnABaseURL, cfg.Sources.QnAKey),
		sources.NewWebcrawlAdapter(),
	)

	orch := &orchestrator.Orchestrator{
		Brands:   cfg.Brand,
		Sources:  registry,
		Analyzer: analyze.NewAnalyzer(providers),
		Detector: dedup.NewDetector(providers, cfg.Discovery.RecentSampleSize),
		Ideas:    store,
		Configs:  store,
		Runs:     store,
		Cache:    cache,
		Opts: orchestrator.Options{
			EnrichmentWorkers:  cfg.Discovery.EnrichmentWorkers,
			DuplicateThreshold: cfg.Discovery.DuplicateThreshold,
			RecentSampleSize:   cfg.Discovery.RecentSampleSize,
		},
	}

	return &pipeline{cfg: cfg, store: store, rdb: rdb, orch: orch}, nil
}

func (p *pipeline) Close() {
	if p.rdb != nil {
		p.rdb.Close()
	}
	p.store.Close()
}
