package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ideascout/internal/model"
)

// MicroblogAdapter searches a microblogging platform's recent-search API for
// the brand's hashtags. Without a bearer token it runs in degraded mode.
type MicroblogAdapter struct {
	BaseURL string
	Token   string
	client  *http.Client
}

func NewMicroblogAdapter(baseURL, token string) *MicroblogAdapter {
	return &MicroblogAdapter{
		BaseURL: baseURL,
		Token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *MicroblogAdapter) Name() string { return model.SourceMicroblog }

type microblogResponse struct {
	Data []struct {
		ID            string `json:"id"`
		Text          string `json:"text"`
		CreatedAt     string `json:"created_at"`
		PublicMetrics struct {
			RetweetCount    int `json:"retweet_count"`
			ReplyCount      int `json:"reply_count"`
			LikeCount       int `json:"like_count"`
			ImpressionCount int `json:"impression_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

func (a *MicroblogAdapter) Discover(ctx context.Context, cfg model.DiscoveryConfig) ([]model.RawIdea, error) {
	if a.Token == "" {
		slog.Warn("microblog adapter: no bearer token, running in simulated mode")
		return simulatedIdeas(model.SourceMicroblog, 4, cfg.BrandID), nil
	}
	var out []model.RawIdea
	var lastErr error
	for _, tag := range cfg.Microblog.Hashtags {
		items, err := a.searchHashtag(ctx, tag, cfg.Microblog.MinReposts)
		if err != nil {
			slog.Error("microblog adapter: search failed", "hashtag", tag, "error", err)
			lastErr = err
			continue
		}
		out = append(out, items...)
	}
	if len(out) == 0 && lastErr != nil {
		return nil, fmt.Errorf("microblog: %w", lastErr)
	}
	slog.Info("microblog adapter: completed", "found", len(out), "hashtags", len(cfg.Microblog.Hashtags))
	return out, nil
}

func (a *MicroblogAdapter) searchHashtag(ctx context.Context, tag string, minReposts int) ([]model.RawIdea, error) {
	q := url.Values{
		"query":        {"#" + strings.TrimPrefix(tag, "#") + " -is:retweet"},
		"tweet.fields": {"public_metrics,created_at"},
		"max_results":  {"25"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/tweets/search/recent?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	var mr microblogResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, err
	}
	items := make([]model.RawIdea, 0, len(mr.Data))
	for _, d := range mr.Data {
		if d.PublicMetrics.RetweetCount < minReposts {
			continue
		}
		created, _ := time.Parse(time.RFC3339, d.CreatedAt)
		title := d.Text
		if len(title) > 120 {
			title = title[:120]
		}
		items = append(items, model.RawIdea{
			Source:      model.SourceMicroblog,
			ExternalID:  d.ID,
			Title:       title,
			Description: d.Text,
			URL:         "https://twitter.com/i/status/" + d.ID,
			Keywords:    []string{tag},
			PublishedAt: created,
			Metrics: map[string]float64{
				"reposts":     float64(d.PublicMetrics.RetweetCount),
				"likes":       float64(d.PublicMetrics.LikeCount),
				"replies":     float64(d.PublicMetrics.ReplyCount),
				"impressions": float64(d.PublicMetrics.ImpressionCount),
			},
		})
	}
	return items, nil
}

// Virality combines repost volume, the per-impression engagement ratio, and a
// short recency decay: microblog signals go stale within half a day.
func (a *MicroblogAdapter) Virality(r model.RawIdea) float64 {
	impressions := r.Metric("impressions")
	if impressions < 1 {
		impressions = 1
	}
	ratio := (r.Metric("likes") + r.Metric("reposts")) / impressions
	score := scaledCap(r.Metric("reposts"), 35.0/1000, 35) +
		scaledCap(ratio*350, 1, 35) +
		recencyBonus(r.PublishedAt, 12*time.Hour, 30)
	return clamp100(score)
}
