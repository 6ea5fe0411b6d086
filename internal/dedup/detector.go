// Package dedup compares a candidate against a bounded sample of existing
// ideas using AI semantic similarity. Absence of a result always means "not a
// duplicate": the stage fails open and never blocks persistence.
package dedup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"ideascout/internal/ai"
	"ideascout/internal/model"
)

// Match reports one existing idea the candidate resembles. Similarity is in
// (70, 100]; weaker resemblances are not reported.
type Match struct {
	IdeaID     string  `json:"idea_id"`
	Similarity float64 `json:"similarity"`
}

// Detector runs AI-backed duplicate checks.
type Detector struct {
	Providers *ai.Registry
	// SampleSize bounds how many existing ideas are sent per check; the
	// comparison is never against the full corpus.
	SampleSize int
}

func NewDetector(providers *ai.Registry, sampleSize int) *Detector {
	if sampleSize <= 0 {
		sampleSize = 50
	}
	return &Detector{Providers: providers, SampleSize: sampleSize}
}

// Detect returns matches with similarity above 70, or an empty slice on any
// failure.
func (d *Detector) Detect(ctx context.Context, candidateText string, existing []model.Idea, brandID, providerName string) []Match {
	if len(existing) == 0 || strings.TrimSpace(candidateText) == "" {
		return nil
	}
	if len(existing) > d.SampleSize {
		existing = existing[:d.SampleSize]
	}

	provider, err := d.Providers.Resolve(providerName)
	if err != nil {
		slog.Warn("dedup: no provider available", "brand", brandID, "error", err)
		return nil
	}
	if err := d.Providers.Wait(ctx, brandID); err != nil {
		slog.Warn("dedup: rate limiter interrupted", "brand", brandID, "error", err)
		return nil
	}

	res, err := provider.GenerateText(ctx, buildPrompt(candidateText, existing), ai.GenerateOptions{
		System:      "You compare content topics for semantic overlap. Respond STRICTLY with a single valid JSON object.",
		Temperature: 0.1,
		MaxTokens:   512,
	})
	if err != nil {
		slog.Warn("dedup: inference failed", "brand", brandID, "provider", provider.Name(), "error", err)
		return nil
	}

	return parseMatches(res.Text, existing)
}

func buildPrompt(candidate string, existing []model.Idea) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "Candidate topic:\n%s\n\nExisting topics:\n", candidate)
	for i, idea := range existing {
		fmt.Fprintf(b, "%d. %s\n", i+1, idea.Title)
	}
	b.WriteString(`
Task: list every existing topic that covers substantially the same subject as
the candidate, with a similarity score from 0 to 100. Only report scores above
70. Respond with JSON using this schema:
{"matches": [{"index": 1, "similarity": 92}]}
Return {"matches": []} when nothing is similar.`)
	return b.String()
}

func parseMatches(text string, existing []model.Idea) []Match {
	payload := ai.ExtractJSONObject(text)
	if payload == "" {
		return nil
	}
	var decoded struct {
		Matches []struct {
			Index      int     `json:"index"`
			Similarity float64 `json:"similarity"`
		} `json:"matches"`
	}
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		slog.Warn("dedup: unparseable response", "error", err)
		return nil
	}
	var out []Match
	for _, m := range decoded.Matches {
		// 1-based indices from the prompt; drop anything out of range.
		if m.Index < 1 || m.Index > len(existing) {
			continue
		}
		if m.Similarity <= 70 || m.Similarity > 100 {
			continue
		}
		out = append(out, Match{IdeaID: existing[m.Index-1].ID, Similarity: m.Similarity})
	}
	return out
}
