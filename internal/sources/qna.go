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

// QnAAdapter pulls highly-voted recent questions from a Stack Exchange style
// API. The endpoints are public; an application key only raises quotas.
type QnAAdapter struct {
	BaseURL string
	Key     string
	client  *http.Client
}

func NewQnAAdapter(baseURL, key string) *QnAAdapter {
	return &QnAAdapter{
		BaseURL: baseURL,
		Key:     key,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *QnAAdapter) Name() string { return model.SourceQnA }

type qnaResponse struct {
	Items []struct {
		QuestionID   int64    `json:"question_id"`
		Title        string   `json:"title"`
		Link         string   `json:"link"`
		Score        int      `json:"score"`
		AnswerCount  int      `json:"answer_count"`
		ViewCount    int      `json:"view_count"`
		CreationDate int64    `json:"creation_date"`
		Tags         []string `json:"tags"`
	} `json:"items"`
}

func (a *QnAAdapter) Discover(ctx context.Context, cfg model.DiscoveryConfig) ([]model.RawIdea, error) {
	site := cfg.QnA.Site
	if site == "" {
		site = "stackoverflow"
	}
	var out []model.RawIdea
	var lastErr error
	for _, tag := range cfg.QnA.Tags {
		items, err := a.fetchTag(ctx, site, tag, cfg.QnA.MinAnsw)
		if err != nil {
			slog.Error("qna adapter: fetch failed", "tag", tag, "error", err)
			lastErr = err
			continue
		}
		out = append(out, items...)
	}
	if len(out) == 0 && lastErr != nil {
		return nil, fmt.Errorf("qna: %w", lastErr)
	}
	slog.Info("qna adapter: completed", "found", len(out), "tags", len(cfg.QnA.Tags))
	return out, nil
}

func (a *QnAAdapter) fetchTag(ctx context.Context, site, tag string, minAnswers int) ([]model.RawIdea, error) {
	q := url.Values{
		"order":    {"desc"},
		"sort":     {"votes"},
		"tagged":   {tag},
		"site":     {site},
		"pagesize": {"25"},
		"fromdate": {fmt.Sprintf("%d", time.Now().AddDate(0, 0, -7).Unix())},
	}
	if a.Key != "" {
		q.Set("key", a.Key)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/questions?"+q.Encode(), nil)
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
	var qr qnaResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return nil, err
	}
	items := make([]model.RawIdea, 0, len(qr.Items))
	for _, it := range qr.Items {
		if it.AnswerCount < minAnswers {
			continue
		}
		items = append(items, model.RawIdea{
			Source:      model.SourceQnA,
			ExternalID:  fmt.Sprintf("%d", it.QuestionID),
			Title:       strings.TrimSpace(it.Title),
			Description: fmt.Sprintf("Question tagged %s with %d answers and %d views.", strings.Join(it.Tags, ", "), it.AnswerCount, it.ViewCount),
			URL:         it.Link,
			Keywords:    it.Tags,
			PublishedAt: time.Unix(it.CreationDate, 0).UTC(),
			Metrics: map[string]float64{
				"votes":   float64(it.Score),
				"answers": float64(it.AnswerCount),
				"views":   float64(it.ViewCount),
			},
		})
	}
	return items, nil
}

// Virality combines question votes, answer activity, view volume, and a
// three-day recency decay.
func (a *QnAAdapter) Virality(r model.RawIdea) float64 {
	score := scaledCap(r.Metric("votes"), 30.0/100, 30) +
		scaledCap(r.Metric("answers"), 2, 20) +
		scaledCap(r.Metric("views"), 20.0/10_000, 20) +
		recencyBonus(r.PublishedAt, 72*time.Hour, 30)
	return clamp100(score)
}
