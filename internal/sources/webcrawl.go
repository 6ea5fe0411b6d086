package sources

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"

	"ideascout/internal/model"
)

// WebcrawlAdapter walks the brand's configured RSS/Atom feeds. Feeds carry no
// engagement counts, so its virality heuristic leans on feed position and
// content depth instead.
type WebcrawlAdapter struct {
	parser *gofeed.Parser
}

func NewWebcrawlAdapter() *WebcrawlAdapter {
	return &WebcrawlAdapter{parser: gofeed.NewParser()}
}

func (a *WebcrawlAdapter) Name() string { return model.SourceWebcrawl }

func (a *WebcrawlAdapter) Discover(ctx context.Context, cfg model.DiscoveryConfig) ([]model.RawIdea, error) {
	if len(cfg.Webcrawl.FeedURLs) == 0 {
		slog.Info("webcrawl adapter: no feeds configured")
		return nil, nil
	}
	maxItems := cfg.Webcrawl.MaxItems
	if maxItems <= 0 {
		maxItems = 20
	}
	var out []model.RawIdea
	var lastErr error
	for _, feedURL := range cfg.Webcrawl.FeedURLs {
		feed, err := a.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			slog.Error("webcrawl adapter: parse failed", "feed", feedURL, "error", err)
			lastErr = err
			continue
		}
		for i, item := range feed.Items {
			if i >= maxItems {
				break
			}
			published := time.Now().UTC()
			if item.PublishedParsed != nil {
				published = item.PublishedParsed.UTC()
			}
			out = append(out, model.RawIdea{
				Source:      model.SourceWebcrawl,
				ExternalID:  firstNonEmpty(item.GUID, item.Link),
				Title:       item.Title,
				Description: item.Description,
				URL:         item.Link,
				Keywords:    item.Categories,
				PublishedAt: published,
				Metrics: map[string]float64{
					"position":     float64(i),
					"content_size": float64(len(item.Description) + len(item.Content)),
				},
			})
		}
	}
	if len(out) == 0 && lastErr != nil {
		return nil, fmt.Errorf("webcrawl: %w", lastErr)
	}
	slog.Info("webcrawl adapter: completed", "found", len(out), "feeds", len(cfg.Webcrawl.FeedURLs))
	return out, nil
}

// Virality uses feed position as the prominence term, content depth as the
// quality term, and a three-day recency decay.
func (a *WebcrawlAdapter) Virality(r model.RawIdea) float64 {
	position := 40 - r.Metric("position")*4
	if position < 0 {
		position = 0
	}
	score := position +
		scaledCap(r.Metric("content_size"), 30.0/1500, 30) +
		recencyBonus(r.PublishedAt, 72*time.Hour, 30)
	return clamp100(score)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
