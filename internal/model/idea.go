package model

import "time"

// Status tracks an idea through the content workflow. The pipeline only ever
// creates ideas in StatusNew; later transitions belong to downstream tooling.
type Status string

const (
	StatusNew          Status = "new"
	StatusResearching  Status = "researching"
	StatusQueued       Status = "queued"
	StatusInProduction Status = "in_production"
	StatusSaved        Status = "saved"
	StatusDismissed    Status = "dismissed"
)

// Priority buckets an overall score for triage.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// SubScores holds the four 0-100 dimensions combined into the overall score.
type SubScores struct {
	Virality    float64 `json:"virality"`
	Relevance   float64 `json:"relevance"`
	Competition float64 `json:"competition"`
	Timeliness  float64 `json:"timeliness"`
}

// Idea is a candidate content topic discovered from an external source.
type Idea struct {
	ID           string         `json:"id"`
	BrandID      string         `json:"brand_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Source       string         `json:"source"`
	SourceURL    string         `json:"source_url"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	DiscoveredAt time.Time      `json:"discovered_at"`
	Scores       SubScores      `json:"scores"`
	OverallScore float64        `json:"overall_score"`
	Priority     Priority       `json:"priority"`
	Status       Status         `json:"status"`
	Keywords     []string       `json:"keywords,omitempty"`
	Platforms    []string       `json:"platforms,omitempty"`
	Category     string         `json:"category,omitempty"`
	ContentType  string         `json:"content_type,omitempty"`
	Brief        string         `json:"brief,omitempty"`
	Research     map[string]any `json:"research,omitempty"`
}

// RawIdea is the normalized record an adapter produces before enrichment.
// Metrics carries the source-specific engagement numbers each adapter's
// virality heuristic reads; Simulated marks degraded-mode placeholder data so
// it is never indistinguishable from real signals.
type RawIdea struct {
	Source      string             `json:"source"`
	ExternalID  string             `json:"external_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	URL         string             `json:"url"`
	Keywords    []string           `json:"keywords,omitempty"`
	PublishedAt time.Time          `json:"published_at"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	Simulated   bool               `json:"simulated"`
}

// Metric returns a named engagement metric, or zero when absent.
func (r RawIdea) Metric(name string) float64 {
	if r.Metrics == nil {
		return 0
	}
	return r.Metrics[name]
}
