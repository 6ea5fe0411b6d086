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
)

// ForumAdapter pulls hot threads from subreddit listings via the public JSON
// endpoints. No credentials are required, only an identifying user agent.
type ForumAdapter struct {
	BaseURL   string
	UserAgent string
	client    *http.Client
}

func NewForumAdapter(baseURL, userAgent string) *ForumAdapter {
	return &ForumAdapter{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *ForumAdapter) Name() string { return model.SourceForum }

type forumListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID          string  `json:"id"`
				Title       string  `json:"title"`
				Selftext    string  `json:"selftext"`
				Subreddit   string  `json:"subreddit"`
				Score       int     `json:"score"`
				UpvoteRatio float64 `json:"upvote_ratio"`
				NumComments int     `json:"num_comments"`
				Permalink   string  `json:"permalink"`
				CreatedUTC  float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (a *ForumAdapter) Discover(ctx context.Context, cfg model.DiscoveryConfig) ([]model.RawIdea, error) {
	sort := cfg.Forum.Sort
	if sort == "" {
		sort = "hot"
	}
	var out []model.RawIdea
	var lastErr error
	for _, sub := range cfg.Forum.Subreddits {
		items, err := a.fetchSubreddit(ctx, sub, sort, cfg.Forum.MinUpvotes)
		if err != nil {
			slog.Error("forum adapter: fetch failed", "subreddit", sub, "error", err)
			lastErr = err
			continue
		}
		out = append(out, items...)
	}
	if len(out) == 0 && lastErr != nil {
		return nil, fmt.Errorf("forum: %w", lastErr)
	}
	slog.Info("forum adapter: completed", "found", len(out), "subreddits", len(cfg.Forum.Subreddits))
	return out, nil
}

func (a *ForumAdapter) fetchSubreddit(ctx context.Context, sub, sort string, minUpvotes int) ([]model.RawIdea, error) {
	endpoint := fmt.Sprintf("%s/r/%s/%s.json", a.BaseURL, url.PathEscape(sub), url.PathEscape(sort))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?limit=25", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", a.UserAgent)
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	var listing forumListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, err
	}
	items := make([]model.RawIdea, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		d := child.Data
		if d.Score < minUpvotes {
			continue
		}
		items = append(items, model.RawIdea{
			Source:      model.SourceForum,
			ExternalID:  d.ID,
			Title:       d.Title,
			Description: d.Selftext,
			URL:         a.BaseURL + d.Permalink,
			Keywords:    []string{d.Subreddit},
			PublishedAt: time.Unix(int64(d.CreatedUTC), 0).UTC(),
			Metrics: map[string]float64{
				"upvotes":  float64(d.Score),
				"ratio":    d.UpvoteRatio,
				"comments": float64(d.NumComments),
			},
		})
	}
	return items, nil
}

// Virality combines absolute upvotes, the upvote ratio as a quality term,
// comment volume, and a linear recency decay, each term capped.
func (a *ForumAdapter) Virality(r model.RawIdea) float64 {
	score := scaledCap(r.Metric("upvotes"), 30.0/1000, 30) +
		scaledCap(r.Metric("ratio"), 20, 20) +
		scaledCap(r.Metric("comments"), 20.0/100, 20) +
		recencyBonus(r.PublishedAt, 48*time.Hour, 30)
	return clamp100(score)
}
