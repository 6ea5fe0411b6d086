// Package analyze enriches raw candidates with AI-backed relevance scoring.
// The stage is best-effort by contract: any provider or parse failure yields a
// typed default instead of an error, so enrichment can never abort a run.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"ideascout/internal/ai"
	"ideascout/internal/config"
	"ideascout/internal/model"
	"ideascout/internal/scoring"
)

// Analysis is the enrichment payload for one candidate.
type Analysis struct {
	RelevanceScore  float64  `json:"relevance_score"`
	Category        string   `json:"category"`
	ContentType     string   `json:"content_type"`
	TargetPlatforms []string `json:"target_platforms"`
	Keywords        []string `json:"keywords"`
	Brief           string   `json:"brief"`
	Insights        []string `json:"insights"`
	// Degraded marks the typed default used when inference failed.
	Degraded bool `json:"-"`
}

// Analyzer scores a raw idea's relevance to a brand.
type Analyzer struct {
	Providers *ai.Registry
}

func NewAnalyzer(providers *ai.Registry) *Analyzer {
	return &Analyzer{Providers: providers}
}

// Analyze enriches one candidate. It never returns an error.
func (a *Analyzer) Analyze(ctx context.Context, raw model.RawIdea, brand config.BrandConfig) Analysis {
	provider, err := a.Providers.Resolve(brand.Provider)
	if err != nil {
		slog.Warn("analyzer: no provider available", "brand", brand.ID, "error", err)
		return defaultAnalysis(raw)
	}
	if err := a.Providers.Wait(ctx, brand.ID); err != nil {
		slog.Warn("analyzer: rate limiter interrupted", "brand", brand.ID, "error", err)
		return defaultAnalysis(raw)
	}

	prompt := buildPrompt(raw, brand)
	res, err := provider.GenerateText(ctx, prompt, ai.GenerateOptions{
		System:      "You are a content strategist. Respond STRICTLY with a single valid JSON object.",
		Temperature: 0.4,
		MaxTokens:   1024,
	})
	if err != nil {
		slog.Warn("analyzer: inference failed", "brand", brand.ID, "provider", provider.Name(), "error", err)
		return defaultAnalysis(raw)
	}
	slog.Debug("analyzer: inference complete", "brand", brand.ID, "provider", provider.Name(),
		"input_tokens", res.Usage.Input, "output_tokens", res.Usage.Output)

	parsed, ok := parseAnalysis(res.Text)
	if !ok {
		slog.Warn("analyzer: unparseable response", "brand", brand.ID, "provider", provider.Name())
		return defaultAnalysis(raw)
	}
	if len(parsed.Keywords) == 0 {
		parsed.Keywords = raw.Keywords
	}
	parsed.RelevanceScore = scoring.Clamp(parsed.RelevanceScore, 0, 100)
	return parsed
}

func buildPrompt(raw model.RawIdea, brand config.BrandConfig) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "Brand: %s\n", brand.Name)
	if brand.Voice != "" {
		fmt.Fprintf(b, "Brand voice: %s\n", brand.Voice)
	}
	if brand.Audience != "" {
		fmt.Fprintf(b, "Audience: %s\n", brand.Audience)
	}
	if len(brand.Topics) > 0 {
		fmt.Fprintf(b, "Core topics: %s\n", strings.Join(brand.Topics, ", "))
	}
	fmt.Fprintf(b, "\nCandidate topic from source %q:\nTitle: %s\n", raw.Source, raw.Title)
	if desc := strings.TrimSpace(raw.Description); desc != "" {
		if len([]rune(desc)) > 800 {
			desc = string([]rune(desc)[:800])
		}
		fmt.Fprintf(b, "Description: %s\n", desc)
	}
	b.WriteString(`
Task: assess how relevant this topic is for the brand and how to cover it.
Respond with JSON using this schema:
{
  "relevance_score": 0-100,
  "category": "short category label",
  "content_type": "video|article|thread|short|newsletter",
  "target_platforms": ["..."],
  "keywords": ["..."],
  "brief": "2-3 sentence angle for the brand",
  "insights": ["..."]
}`)
	return b.String()
}

func parseAnalysis(text string) (Analysis, bool) {
	payload := ai.ExtractJSONObject(text)
	if payload == "" {
		return Analysis{}, false
	}
	var out Analysis
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return Analysis{}, false
	}
	if out.Category == "" && out.Brief == "" && out.RelevanceScore == 0 {
		return Analysis{}, false
	}
	return out, true
}

// defaultAnalysis is the fixed fallback payload: mid-range score, generic
// category, source keywords unchanged.
func defaultAnalysis(raw model.RawIdea) Analysis {
	return Analysis{
		RelevanceScore:  50,
		Category:        "general",
		ContentType:     "article",
		TargetPlatforms: nil,
		Keywords:        raw.Keywords,
		Brief:           "",
		Degraded:        true,
	}
}
