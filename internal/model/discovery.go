package model

import "time"

// Source identifiers for the six adapters.
const (
	SourceForum     = "forum"
	SourceVideo     = "video"
	SourceMicroblog = "microblog"
	SourceKeywords  = "keywords"
	SourceQnA       = "qna"
	SourceWebcrawl  = "webcrawl"
)

// AllSources lists every known source identifier.
func AllSources() []string {
	return []string{SourceForum, SourceVideo, SourceMicroblog, SourceKeywords, SourceQnA, SourceWebcrawl}
}

// ScoreWeights are the per-dimension weights for the overall score. They need
// not sum to 1; the scoring engine normalizes them by their sum before use.
type ScoreWeights struct {
	Virality    float64 `json:"virality"`
	Relevance   float64 `json:"relevance"`
	Competition float64 `json:"competition"`
	Timeliness  float64 `json:"timeliness"`
}

// ForumSourceConfig controls the forum adapter.
type ForumSourceConfig struct {
	Subreddits []string `json:"subreddits"`
	Sort       string   `json:"sort"`
	MinUpvotes int      `json:"min_upvotes"`
}

// VideoSourceConfig controls the video adapter.
type VideoSourceConfig struct {
	Queries   []string `json:"queries"`
	MaxAgeDay int      `json:"max_age_days"`
}

// MicroblogSourceConfig controls the microblog adapter.
type MicroblogSourceConfig struct {
	Hashtags   []string `json:"hashtags"`
	MinReposts int      `json:"min_reposts"`
}

// KeywordSourceConfig controls the keyword-research adapter.
type KeywordSourceConfig struct {
	Seeds        []string `json:"seeds"`
	MinVolume    int      `json:"min_volume"`
	MaxCompetition float64  `json:"max_competition"`
}

// QnASourceConfig controls the Q&A adapter.
type QnASourceConfig struct {
	Tags    []string `json:"tags"`
	Site    string   `json:"site"`
	MinAnsw int      `json:"min_answers"`
}

// WebcrawlSourceConfig controls the web-crawl adapter.
type WebcrawlSourceConfig struct {
	FeedURLs []string `json:"feed_urls"`
	MaxItems int      `json:"max_items"`
}

// DiscoveryConfig is the per-brand policy controlling which sources run and
// how scores are weighted and capped. One row per brand, created lazily with
// defaults on first run.
type DiscoveryConfig struct {
	BrandID          string                `json:"brand_id"`
	EnabledSources   []string              `json:"enabled_sources"`
	Weights          ScoreWeights          `json:"weights"`
	ExcludedKeywords []string              `json:"excluded_keywords,omitempty"`
	MinScore         float64               `json:"min_score"`
	MaxIdeasPerDay   int                   `json:"max_ideas_per_day"`
	Forum            ForumSourceConfig     `json:"forum"`
	Video            VideoSourceConfig     `json:"video"`
	Microblog        MicroblogSourceConfig `json:"microblog"`
	Keywords         KeywordSourceConfig   `json:"keywords"`
	QnA              QnASourceConfig       `json:"qna"`
	Webcrawl         WebcrawlSourceConfig  `json:"webcrawl"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// DefaultDiscoveryConfig returns the documented defaults applied when a brand
// has no stored config yet: all six sources enabled, weights 0.3/0.3/0.2/0.2,
// MinScore 50, MaxIdeasPerDay 50.
func DefaultDiscoveryConfig(brandID string) DiscoveryConfig {
	now := time.Now().UTC()
	return DiscoveryConfig{
		BrandID:        brandID,
		EnabledSources: AllSources(),
		Weights: ScoreWeights{
			Virality:    0.3,
			Relevance:   0.3,
			Competition: 0.2,
			Timeliness:  0.2,
		},
		MinScore:       50,
		MaxIdeasPerDay: 50,
		Forum:          ForumSourceConfig{Subreddits: []string{"popular"}, Sort: "hot", MinUpvotes: 50},
		Video:          VideoSourceConfig{Queries: []string{"trending"}, MaxAgeDay: 7},
		Microblog:      MicroblogSourceConfig{Hashtags: []string{"trending"}, MinReposts: 20},
		Keywords:       KeywordSourceConfig{Seeds: []string{"how to"}, MinVolume: 500, MaxCompetition: 0.8},
		QnA:            QnASourceConfig{Tags: []string{"popular"}, Site: "stackoverflow", MinAnsw: 1},
		Webcrawl:       WebcrawlSourceConfig{MaxItems: 20},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// SourceEnabled reports whether the named source is in the enabled list.
func (c DiscoveryConfig) SourceEnabled(name string) bool {
	for _, s := range c.EnabledSources {
		if s == name {
			return true
		}
	}
	return false
}
