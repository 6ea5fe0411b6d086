package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"ideascout/internal/model"
	"ideascout/internal/scoring"
)

// KeywordAdapter queries a keyword-research service for search volume,
// competition, and interest series around the brand's seed terms. Without a
// configured endpoint it runs in degraded mode.
type KeywordAdapter struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

func NewKeywordAdapter(baseURL, apiKey string) *KeywordAdapter {
	return &KeywordAdapter{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *KeywordAdapter) Name() string { return model.SourceKeywords }

type keywordRecord struct {
	Keyword     string    `json:"keyword"`
	Volume      float64   `json:"volume"`
	Competition float64   `json:"competition"`
	Series      []float64 `json:"series"`
	URL         string    `json:"url"`
}

func (a *KeywordAdapter) Discover(ctx context.Context, cfg model.DiscoveryConfig) ([]model.RawIdea, error) {
	if a.BaseURL == "" {
		slog.Warn("keyword adapter: no endpoint configured, running in simulated mode")
		return a.simulated(cfg), nil
	}
	var out []model.RawIdea
	var lastErr error
	for _, seed := range cfg.Keywords.Seeds {
		records, err := a.fetchSeed(ctx, seed)
		if err != nil {
			slog.Error("keyword adapter: fetch failed", "seed", seed, "error", err)
			lastErr = err
			continue
		}
		for _, rec := range records {
			if rec.Volume < float64(cfg.Keywords.MinVolume) {
				continue
			}
			if cfg.Keywords.MaxCompetition > 0 && rec.Competition > cfg.Keywords.MaxCompetition {
				continue
			}
			out = append(out, a.toRawIdea(rec, seed))
		}
	}
	if len(out) == 0 && lastErr != nil {
		return nil, fmt.Errorf("keywords: %w", lastErr)
	}
	slog.Info("keyword adapter: completed", "found", len(out), "seeds", len(cfg.Keywords.Seeds))
	return out, nil
}

func (a *KeywordAdapter) fetchSeed(ctx context.Context, seed string) ([]keywordRecord, error) {
	q := url.Values{"seed": {seed}}
	if a.APIKey != "" {
		q.Set("key", a.APIKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/v1/keywords?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	var records []keywordRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

func (a *KeywordAdapter) toRawIdea(rec keywordRecord, seed string) model.RawIdea {
	trend := scoring.TrendDirection(rec.Series)
	metrics := map[string]float64{
		"volume":      rec.Volume,
		"competition": rec.Competition,
		"trend":       trendWeight(trend),
	}
	return model.RawIdea{
		Source:      model.SourceKeywords,
		ExternalID:  rec.Keyword,
		Title:       rec.Keyword,
		Description: fmt.Sprintf("Search interest for %q (seeded by %q) is %s.", rec.Keyword, seed, trend),
		URL:         rec.URL,
		Keywords:    []string{rec.Keyword, seed},
		PublishedAt: time.Now().UTC(),
		Metrics:     metrics,
	}
}

func (a *KeywordAdapter) simulated(cfg model.DiscoveryConfig) []model.RawIdea {
	out := simulatedIdeas(model.SourceKeywords, 3, cfg.BrandID)
	for i := range out {
		out[i].Metrics["trend"] = trendWeight(scoring.TrendStable)
	}
	return out
}

func trendWeight(t scoring.Trend) float64 {
	switch t {
	case scoring.TrendRising:
		return 30
	case scoring.TrendDeclining:
		return 0
	default:
		return 15
	}
}

// Virality combines search volume, inverted competition as the quality term,
// and the interest-series trend in place of a timestamp decay: keyword data is
// aggregate, so "recency" is whether interest is still climbing.
func (a *KeywordAdapter) Virality(r model.RawIdea) float64 {
	score := scaledCap(r.Metric("volume"), 40.0/10_000, 40) +
		scaledCap((1-r.Metric("competition"))*30, 1, 30) +
		scaledCap(r.Metric("trend"), 1, 30)
	return clamp100(score)
}
