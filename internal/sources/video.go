package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ideascout/internal/model"
)

// VideoAdapter searches a video platform's data API for recent uploads
// matching the brand's queries. Without an API key it runs in degraded mode
// and emits simulated records.
type VideoAdapter struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

func NewVideoAdapter(baseURL, apiKey string) *VideoAdapter {
	return &VideoAdapter{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *VideoAdapter) Name() string { return model.SourceVideo }

type videoSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type videoDetailsResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			PublishedAt string `json:"publishedAt"`
			Tags        []string `json:"tags"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

func (a *VideoAdapter) Discover(ctx context.Context, cfg model.DiscoveryConfig) ([]model.RawIdea, error) {
	if a.APIKey == "" {
		slog.Warn("video adapter: no API key, running in simulated mode")
		return simulatedIdeas(model.SourceVideo, 4, cfg.BrandID), nil
	}
	maxAge := cfg.Video.MaxAgeDay
	if maxAge <= 0 {
		maxAge = 7
	}
	publishedAfter := time.Now().UTC().AddDate(0, 0, -maxAge).Format(time.RFC3339)

	var out []model.RawIdea
	var lastErr error
	for _, query := range cfg.Video.Queries {
		ids, err := a.search(ctx, query, publishedAfter)
		if err != nil {
			slog.Error("video adapter: search failed", "query", query, "error", err)
			lastErr = err
			continue
		}
		if len(ids) == 0 {
			continue
		}
		items, err := a.details(ctx, ids)
		if err != nil {
			slog.Error("video adapter: details failed", "query", query, "error", err)
			lastErr = err
			continue
		}
		out = append(out, items...)
	}
	if len(out) == 0 && lastErr != nil {
		return nil, fmt.Errorf("video: %w", lastErr)
	}
	slog.Info("video adapter: completed", "found", len(out), "queries", len(cfg.Video.Queries))
	return out, nil
}

func (a *VideoAdapter) search(ctx context.Context, query, publishedAfter string) ([]string, error) {
	q := url.Values{
		"part":           {"snippet"},
		"type":           {"video"},
		"order":          {"viewCount"},
		"maxResults":     {"10"},
		"q":              {query},
		"publishedAfter": {publishedAfter},
		"key":            {a.APIKey},
	}
	var sr videoSearchResponse
	if err := a.get(ctx, "/search", q, &sr); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(sr.Items))
	for _, it := range sr.Items {
		if it.ID.VideoID != "" {
			ids = append(ids, it.ID.VideoID)
		}
	}
	return ids, nil
}

func (a *VideoAdapter) details(ctx context.Context, ids []string) ([]model.RawIdea, error) {
	q := url.Values{
		"part": {"snippet,statistics"},
		"id":   {strings.Join(ids, ",")},
		"key":  {a.APIKey},
	}
	var dr videoDetailsResponse
	if err := a.get(ctx, "/videos", q, &dr); err != nil {
		return nil, err
	}
	out := make([]model.RawIdea, 0, len(dr.Items))
	for _, it := range dr.Items {
		views, _ := strconv.ParseFloat(it.Statistics.ViewCount, 64)
		likes, _ := strconv.ParseFloat(it.Statistics.LikeCount, 64)
		comments, _ := strconv.ParseFloat(it.Statistics.CommentCount, 64)
		published, _ := time.Parse(time.RFC3339, it.Snippet.PublishedAt)
		engagement := 0.0
		if views > 0 {
			engagement = (likes + comments) / views
		}
		out = append(out, model.RawIdea{
			Source:      model.SourceVideo,
			ExternalID:  it.ID,
			Title:       it.Snippet.Title,
			Description: it.Snippet.Description,
			URL:         "https://www.youtube.com/watch?v=" + it.ID,
			Keywords:    it.Snippet.Tags,
			PublishedAt: published,
			Metrics: map[string]float64{
				"views":      views,
				"likes":      likes,
				"comments":   comments,
				"engagement": engagement,
			},
		})
	}
	return out, nil
}

func (a *VideoAdapter) get(ctx context.Context, path string, q url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// Virality weights raw view volume, engagement rate as the quality term, and
// a week-long recency decay.
func (a *VideoAdapter) Virality(r model.RawIdea) float64 {
	score := scaledCap(r.Metric("views"), 30.0/100_000, 30) +
		scaledCap(r.Metric("engagement")*10_000, 1, 40) +
		recencyBonus(r.PublishedAt, 7*24*time.Hour, 30)
	return clamp100(score)
}
