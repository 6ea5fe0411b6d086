package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideascout/internal/ai"
	"ideascout/internal/analyze"
	"ideascout/internal/config"
	"ideascout/internal/dedup"
	"ideascout/internal/model"
	"ideascout/internal/sources"
	"ideascout/internal/storage"
)

// fakeAdapter returns canned candidates with a fixed virality.
type fakeAdapter struct {
	name     string
	ideas    []model.RawIdea
	err      error
	virality float64
	panics   bool
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Discover(ctx context.Context, cfg model.DiscoveryConfig) ([]model.RawIdea, error) {
	if f.panics {
		panic("adapter exploded")
	}
	return f.ideas, f.err
}

func (f *fakeAdapter) Virality(r model.RawIdea) float64 { return f.virality }

// scriptedProvider answers the analysis prompt with a fixed relevance and the
// dedup prompt with configurable matches.
type scriptedProvider struct {
	relevance float64
	dedupJSON string
	err       error
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) GenerateText(ctx context.Context, prompt string, opts ai.GenerateOptions) (*ai.Result, error) {
	if p.err != nil {
		return nil, p.err
	}
	if strings.Contains(prompt, "Existing topics:") {
		body := p.dedupJSON
		if body == "" {
			body = `{"matches": []}`
		}
		return &ai.Result{Text: body}, nil
	}
	return &ai.Result{Text: fmt.Sprintf(
		`{"relevance_score": %g, "category": "tech", "content_type": "article", "keywords": ["go"], "brief": "cover it"}`,
		p.relevance)}, nil
}

// memStore implements all three store interfaces in memory.
type memStore struct {
	mu        sync.Mutex
	ideas     []model.Idea
	runs      map[string]*model.DiscoveryRun
	cfg       model.DiscoveryConfig
	createErr error
}

func newMemStore(cfg model.DiscoveryConfig) *memStore {
	return &memStore{runs: map[string]*model.DiscoveryRun{}, cfg: cfg}
}

func (m *memStore) Create(ctx context.Context, idea *model.Idea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.ideas = append(m.ideas, *idea)
	return nil
}

func (m *memStore) Recent(ctx context.Context, brandID string, limit int) ([]model.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Idea
	for i := len(m.ideas) - 1; i >= 0 && len(out) < limit; i-- {
		if m.ideas[i].BrandID == brandID {
			out = append(out, m.ideas[i])
		}
	}
	return out, nil
}

func (m *memStore) CountSince(ctx context.Context, brandID string, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, idea := range m.ideas {
		if idea.BrandID == brandID && !idea.DiscoveredAt.Before(cutoff) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) FindByBrand(ctx context.Context, brandID string, status model.Status, limit int) ([]model.Idea, error) {
	return m.Recent(ctx, brandID, limit)
}

func (m *memStore) GetOrCreateWithDefaults(ctx context.Context, brandID string) (model.DiscoveryConfig, error) {
	return m.cfg, nil
}

func (m *memStore) Update(ctx context.Context, cfg model.DiscoveryConfig) error {
	m.cfg = cfg
	return nil
}

func (m *memStore) CreateRun(ctx context.Context, run *model.DiscoveryRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *run
	m.runs[run.ID] = &cp
	return nil
}

func (m *memStore) FinalizeRun(ctx context.Context, run *model.DiscoveryRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[run.ID]; !ok {
		return storage.ErrNotFound
	}
	cp := *run
	m.runs[run.ID] = &cp
	return nil
}

func (m *memStore) FindRunsByBrand(ctx context.Context, brandID string, limit int) ([]model.DiscoveryRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.DiscoveryRun
	for _, r := range m.runs {
		if r.BrandID == brandID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func rawIdea(source, title string) model.RawIdea {
	return model.RawIdea{
		Source:      source,
		ExternalID:  title,
		Title:       title,
		Description: "some description",
		PublishedAt: time.Now().Add(-2 * time.Hour),
	}
}

func newTestOrchestrator(store *memStore, provider ai.ProviderClient, adapters ...sources.Adapter) *Orchestrator {
	reg := ai.NewRegistry("scripted", 0, 0)
	reg.Register(provider)
	brand := config.BrandConfig{ID: "brand-1", Name: "Acme", Topics: []string{"golang"}}
	return &Orchestrator{
		Brands: func(id string) (config.BrandConfig, bool) {
			if id == brand.ID {
				return brand, true
			}
			return config.BrandConfig{}, false
		},
		Sources:  sources.NewRegistry(adapters...),
		Analyzer: analyze.NewAnalyzer(reg),
		Detector: dedup.NewDetector(reg, 50),
		Ideas:    store,
		Configs:  store,
		Runs:     store,
	}
}

func testConfig() model.DiscoveryConfig {
	cfg := model.DefaultDiscoveryConfig("brand-1")
	cfg.MinScore = 10
	return cfg
}

func TestRunCompletesAndPersistsIdeas(t *testing.T) {
	store := newMemStore(testConfig())
	o := newTestOrchestrator(store,
		&scriptedProvider{relevance: 90},
		&fakeAdapter{name: model.SourceForum, virality: 80, ideas: []model.RawIdea{
			rawIdea(model.SourceForum, "Build a CLI in Go"),
			rawIdea(model.SourceForum, "Go generics in practice"),
		}},
	)

	run, err := o.Run(context.Background(), "brand-1", nil)
	require.NoError(t, err)
	assert.Equal(t, model.RunCompleted, run.Status)
	assert.Equal(t, 2, run.Persisted)
	assert.Equal(t, 2, run.SourceStats[model.SourceForum].Found)
	require.Len(t, store.ideas, 2)
	idea := store.ideas[0]
	assert.Equal(t, model.StatusNew, idea.Status)
	assert.Equal(t, 80.0, idea.Scores.Virality)
	assert.Equal(t, 90.0, idea.Scores.Relevance)
	assert.NotZero(t, idea.OverallScore)
	assert.NotEmpty(t, idea.ID)
}

func TestRunIsPartialWhenOneSourceFails(t *testing.T) {
	store := newMemStore(testConfig())
	o := newTestOrchestrator(store,
		&scriptedProvider{relevance: 90},
		&fakeAdapter{name: model.SourceForum, virality: 80, ideas: []model.RawIdea{
			rawIdea(model.SourceForum, "Build a CLI in Go"),
		}},
		&fakeAdapter{name: model.SourceVideo, err: errors.New("upstream 503")},
	)

	run, err := o.Run(context.Background(), "brand-1", nil)
	require.NoError(t, err)
	assert.Equal(t, model.RunPartial, run.Status)
	assert.Equal(t, 1, run.Persisted)
	assert.Equal(t, "upstream 503", run.SourceStats[model.SourceVideo].Error)
	assert.Len(t, run.Errors, 1)
}

func TestRunSurvivesAdapterPanic(t *testing.T) {
	store := newMemStore(testConfig())
	o := newTestOrchestrator(store,
		&scriptedProvider{relevance: 90},
		&fakeAdapter{name: model.SourceForum, virality: 80, ideas: []model.RawIdea{
			rawIdea(model.SourceForum, "Build a CLI in Go"),
		}},
		&fakeAdapter{name: model.SourceQnA, panics: true},
	)

	run, err := o.Run(context.Background(), "brand-1", nil)
	require.NoError(t, err)
	assert.Equal(t, model.RunPartial, run.Status)
	assert.Equal(t, 1, run.Persisted)
	assert.Contains(t, run.SourceStats[model.SourceQnA].Error, "panic")
}

func TestRunFailsForUnknownBrand(t *testing.T) {
	store := newMemStore(testConfig())
	o := newTestOrchestrator(store, &scriptedProvider{relevance: 90})

	run, err := o.Run(context.Background(), "ghost", nil)
	require.Error(t, err)
	assert.Equal(t, model.RunFailed, run.Status)
	assert.Empty(t, run.SourceStats)
}

func TestRunDropsBelowMinScore(t *testing.T) {
	cfg := testConfig()
	cfg.MinScore = 99
	store := newMemStore(cfg)
	o := newTestOrchestrator(store,
		&scriptedProvider{relevance: 20},
		&fakeAdapter{name: model.SourceForum, virality: 10, ideas: []model.RawIdea{
			rawIdea(model.SourceForum, "Weak signal"),
		}},
	)

	run, err := o.Run(context.Background(), "brand-1", nil)
	require.NoError(t, err)
	assert.Equal(t, model.RunCompleted, run.Status)
	assert.Equal(t, 0, run.Persisted)
	assert.Equal(t, 1, run.BelowMinScore)
	assert.Empty(t, store.ideas)
}

func TestRunEnforcesDailyCap(t *testing.T) {
	cfg := testConfig()
	cfg.MaxIdeasPerDay = 2
	store := newMemStore(cfg)
	var ideas []model.RawIdea
	for i := 0; i < 5; i++ {
		ideas = append(ideas, rawIdea(model.SourceForum, fmt.Sprintf("Idea number %d", i)))
	}
	o := newTestOrchestrator(store,
		&scriptedProvider{relevance: 90},
		&fakeAdapter{name: model.SourceForum, virality: 80, ideas: ideas},
	)

	run, err := o.Run(context.Background(), "brand-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, run.Persisted)
	assert.Equal(t, 3, run.Capped)
	assert.Len(t, store.ideas, 2)
}

func TestRunSkipsDuplicates(t *testing.T) {
	store := newMemStore(testConfig())
	seed := model.Idea{ID: "existing-1", BrandID: "brand-1", Title: "Build a CLI in Go",
		Status: model.StatusNew, DiscoveredAt: time.Now().Add(-time.Hour)}
	store.ideas = append(store.ideas, seed)

	o := newTestOrchestrator(store,
		&scriptedProvider{relevance: 90, dedupJSON: `{"matches": [{"index": 1, "similarity": 95}]}`},
		&fakeAdapter{name: model.SourceForum, virality: 80, ideas: []model.RawIdea{
			rawIdea(model.SourceForum, "Build a CLI in Go, again"),
		}},
	)

	run, err := o.Run(context.Background(), "brand-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, run.Duplicates)
	assert.Equal(t, 0, run.Persisted)
	assert.Len(t, store.ideas, 1)
}

func TestRunBelowThresholdSimilarityIsNotDuplicate(t *testing.T) {
	store := newMemStore(testConfig())
	store.ideas = append(store.ideas, model.Idea{ID: "existing-1", BrandID: "brand-1",
		Title: "Something else", DiscoveredAt: time.Now().Add(-time.Hour)})

	o := newTestOrchestrator(store,
		&scriptedProvider{relevance: 90, dedupJSON: `{"matches": [{"index": 1, "similarity": 80}]}`},
		&fakeAdapter{name: model.SourceForum, virality: 80, ideas: []model.RawIdea{
			rawIdea(model.SourceForum, "Fresh topic"),
		}},
	)

	run, err := o.Run(context.Background(), "brand-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, run.Duplicates)
	assert.Equal(t, 1, run.Persisted)
}

func TestRunFiltersExcludedKeywords(t *testing.T) {
	cfg := testConfig()
	cfg.ExcludedKeywords = []string{"crypto"}
	store := newMemStore(cfg)
	o := newTestOrchestrator(store,
		&scriptedProvider{relevance: 90},
		&fakeAdapter{name: model.SourceForum, virality: 80, ideas: []model.RawIdea{
			rawIdea(model.SourceForum, "Why Crypto Wallets Fail"),
			rawIdea(model.SourceForum, "Writing table tests"),
		}},
	)

	run, err := o.Run(context.Background(), "brand-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, run.Excluded)
	assert.Equal(t, 1, run.Persisted)
	require.Len(t, store.ideas, 1)
	assert.Equal(t, "Writing table tests", store.ideas[0].Title)
}

func TestRunRespectsExplicitSourceSelection(t *testing.T) {
	store := newMemStore(testConfig())
	forum := &fakeAdapter{name: model.SourceForum, virality: 80, ideas: []model.RawIdea{
		rawIdea(model.SourceForum, "Forum idea"),
	}}
	video := &fakeAdapter{name: model.SourceVideo, virality: 80, ideas: []model.RawIdea{
		rawIdea(model.SourceVideo, "Video idea"),
	}}
	o := newTestOrchestrator(store, &scriptedProvider{relevance: 90}, forum, video)

	run, err := o.Run(context.Background(), "brand-1", []string{model.SourceVideo, "bogus"})
	require.NoError(t, err)
	assert.Equal(t, []string{model.SourceVideo}, run.Sources)
	require.Len(t, store.ideas, 1)
	assert.Equal(t, "Video idea", store.ideas[0].Title)
}

func TestRunAnalyzerFallbackStillPersists(t *testing.T) {
	store := newMemStore(testConfig())
	o := newTestOrchestrator(store,
		&scriptedProvider{err: errors.New("provider down")},
		&fakeAdapter{name: model.SourceForum, virality: 80, ideas: []model.RawIdea{
			rawIdea(model.SourceForum, "Resilient idea"),
		}},
	)

	run, err := o.Run(context.Background(), "brand-1", nil)
	require.NoError(t, err)
	assert.Equal(t, model.RunCompleted, run.Status)
	assert.Equal(t, 1, run.Persisted)
	require.Len(t, store.ideas, 1)
	// Degraded analysis falls back to the mid-range relevance default.
	assert.Equal(t, 50.0, store.ideas[0].Scores.Relevance)
	assert.Equal(t, true, store.ideas[0].Metadata["analysis_degraded"])
}

func TestTimelinessScore(t *testing.T) {
	fresh := model.RawIdea{PublishedAt: time.Now()}
	assert.InDelta(t, 100, timelinessScore(fresh), 1)

	old := model.RawIdea{PublishedAt: time.Now().Add(-8 * 24 * time.Hour)}
	assert.Equal(t, 0.0, timelinessScore(old))

	unknown := model.RawIdea{}
	assert.Equal(t, 50.0, timelinessScore(unknown))
}

func TestCompetitionScoreInvertsSaturation(t *testing.T) {
	niche := model.RawIdea{Metrics: map[string]float64{"competition": 0.2}}
	assert.InDelta(t, 80, competitionScore(niche), 0.01)

	crowded := model.RawIdea{Metrics: map[string]float64{"comments": 400}}
	assert.Equal(t, 20.0, competitionScore(crowded))
}
