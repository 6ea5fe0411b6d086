package analyze

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"ideascout/internal/ai"
	"ideascout/internal/config"
	"ideascout/internal/model"
)

type fakeProvider struct {
	name string
	text string
	err  error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) GenerateText(ctx context.Context, prompt string, opts ai.GenerateOptions) (*ai.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Result{Text: f.text}, nil
}

func newRegistry(p ai.ProviderClient) *ai.Registry {
	reg := ai.NewRegistry(p.Name(), 0, 0)
	reg.Register(p)
	return reg
}

var brand = config.BrandConfig{
	ID:       "brand-1",
	Name:     "Acme Dev",
	Voice:    "practical, direct",
	Audience: "working engineers",
	Topics:   []string{"go", "infrastructure"},
}

func TestAnalyzeParsesEmbeddedJSON(t *testing.T) {
	p := &fakeProvider{name: "openai", text: `Here you go:
{"relevance_score": 87, "category": "tutorial", "content_type": "video",
 "target_platforms": ["youtube"], "keywords": ["go", "concurrency"],
 "brief": "Show the failure modes first.", "insights": ["timely"]}
Let me know if you need anything else.`}

	a := NewAnalyzer(newRegistry(p))
	got := a.Analyze(context.Background(), model.RawIdea{Title: "Goroutine leaks"}, brand)

	assert.False(t, got.Degraded)
	assert.Equal(t, 87.0, got.RelevanceScore)
	assert.Equal(t, "tutorial", got.Category)
	assert.Equal(t, []string{"youtube"}, got.TargetPlatforms)
	assert.Equal(t, []string{"go", "concurrency"}, got.Keywords)
}

func TestAnalyzeFallsBackOnProviderError(t *testing.T) {
	p := &fakeProvider{name: "openai", err: errors.New("rate limited")}
	a := NewAnalyzer(newRegistry(p))

	raw := model.RawIdea{Title: "Goroutine leaks", Keywords: []string{"go"}}
	got := a.Analyze(context.Background(), raw, brand)

	assert.True(t, got.Degraded)
	assert.Equal(t, 50.0, got.RelevanceScore)
	assert.Equal(t, "general", got.Category)
	assert.Equal(t, []string{"go"}, got.Keywords, "source keywords pass through unchanged")
}

func TestAnalyzeFallsBackOnMalformedJSON(t *testing.T) {
	p := &fakeProvider{name: "openai", text: "I could not produce JSON, sorry."}
	a := NewAnalyzer(newRegistry(p))

	got := a.Analyze(context.Background(), model.RawIdea{Title: "x"}, brand)
	assert.True(t, got.Degraded)
	assert.Equal(t, 50.0, got.RelevanceScore)
}

func TestAnalyzeClampsScore(t *testing.T) {
	p := &fakeProvider{name: "openai", text: `{"relevance_score": 400, "category": "c"}`}
	a := NewAnalyzer(newRegistry(p))

	got := a.Analyze(context.Background(), model.RawIdea{Title: "x"}, brand)
	assert.Equal(t, 100.0, got.RelevanceScore)
}

func TestAnalyzeUsesBrandProviderOverDefault(t *testing.T) {
	fallback := &fakeProvider{name: "openai", text: `{"relevance_score": 10, "category": "fallback"}`}
	preferred := &fakeProvider{name: "anthropic", text: `{"relevance_score": 90, "category": "preferred"}`}
	reg := ai.NewRegistry("openai", 0, 0)
	reg.Register(fallback)
	reg.Register(preferred)

	b := brand
	b.Provider = "anthropic"
	got := NewAnalyzer(reg).Analyze(context.Background(), model.RawIdea{Title: "x"}, b)
	assert.Equal(t, "preferred", got.Category)
}
