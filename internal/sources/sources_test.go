package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideascout/internal/model"
)

func TestForumViralityCappedAdditive(t *testing.T) {
	a := NewForumAdapter("https://www.reddit.com", "test/1.0")

	r := model.RawIdea{
		Source:      model.SourceForum,
		PublishedAt: time.Now().Add(-2 * time.Hour),
		Metrics: map[string]float64{
			"upvotes":  1000,
			"ratio":    0.95,
			"comments": 150,
		},
	}
	// 30 (upvotes, capped) + 19 (ratio) + 20 (comments, capped) + ~28.75 (recency)
	got := a.Virality(r)
	assert.InDelta(t, 97.75, got, 0.05)
}

func TestForumViralityNeverExceeds100(t *testing.T) {
	a := NewForumAdapter("https://www.reddit.com", "test/1.0")
	r := model.RawIdea{
		PublishedAt: time.Now(),
		Metrics: map[string]float64{
			"upvotes":  1_000_000,
			"ratio":    1,
			"comments": 100_000,
		},
	}
	assert.LessOrEqual(t, a.Virality(r), 100.0)
}

func TestForumViralityStaleRecordGetsNoRecencyBonus(t *testing.T) {
	a := NewForumAdapter("https://www.reddit.com", "test/1.0")
	r := model.RawIdea{
		PublishedAt: time.Now().Add(-96 * time.Hour),
		Metrics:     map[string]float64{"upvotes": 500, "ratio": 0.9, "comments": 50},
	}
	// 15 + 18 + 10 + 0
	assert.InDelta(t, 43.0, a.Virality(r), 0.01)
}

func TestForumDiscoverParsesListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/r/golang/hot.json", req.URL.Path)
		assert.Equal(t, "test/1.0", req.Header.Get("User-Agent"))
		w.Write([]byte(`{"data":{"children":[
			{"data":{"id":"abc","title":"Big thread","selftext":"body","subreddit":"golang","score":1200,"upvote_ratio":0.97,"num_comments":340,"permalink":"/r/golang/comments/abc/","created_utc":1700000000}},
			{"data":{"id":"low","title":"Quiet thread","subreddit":"golang","score":3,"upvote_ratio":0.5,"num_comments":1,"permalink":"/r/golang/comments/low/","created_utc":1700000000}}
		]}}`))
	}))
	defer srv.Close()

	a := NewForumAdapter(srv.URL, "test/1.0")
	cfg := model.DefaultDiscoveryConfig("brand-1")
	cfg.Forum.Subreddits = []string{"golang"}
	cfg.Forum.MinUpvotes = 50

	got, err := a.Discover(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Big thread", got[0].Title)
	assert.Equal(t, model.SourceForum, got[0].Source)
	assert.Equal(t, srv.URL+"/r/golang/comments/abc/", got[0].URL)
	assert.Equal(t, 1200.0, got[0].Metric("upvotes"))
	assert.False(t, got[0].Simulated)
}

func TestForumDiscoverReturnsErrorWhenAllFetchesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewForumAdapter(srv.URL, "test/1.0")
	cfg := model.DefaultDiscoveryConfig("brand-1")
	cfg.Forum.Subreddits = []string{"golang"}

	got, err := a.Discover(context.Background(), cfg)
	assert.Error(t, err)
	assert.Empty(t, got)
}

func TestVideoAdapterSimulatedModeIsExplicit(t *testing.T) {
	a := NewVideoAdapter("https://www.googleapis.com/youtube/v3", "")
	got, err := a.Discover(context.Background(), model.DefaultDiscoveryConfig("brand-1"))
	require.NoError(t, err)
	require.NotEmpty(t, got)
	for _, r := range got {
		assert.True(t, r.Simulated, "degraded-mode records must be flagged")
		assert.Equal(t, model.SourceVideo, r.Source)
	}
}

func TestMicroblogAdapterSimulatedModeIsDeterministicWithinDay(t *testing.T) {
	a := NewMicroblogAdapter("https://api.twitter.com/2", "")
	cfg := model.DefaultDiscoveryConfig("brand-1")

	first, err := a.Discover(context.Background(), cfg)
	require.NoError(t, err)
	second, err := a.Discover(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestQnADiscoverParsesQuestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/questions", req.URL.Path)
		assert.Equal(t, "go", req.URL.Query().Get("tagged"))
		w.Write([]byte(`{"items":[
			{"question_id":77,"title":"How do goroutines work?","link":"https://example.com/q/77","score":140,"answer_count":6,"view_count":9000,"creation_date":1700000000,"tags":["go","concurrency"]}
		]}`))
	}))
	defer srv.Close()

	a := NewQnAAdapter(srv.URL, "")
	cfg := model.DefaultDiscoveryConfig("brand-1")
	cfg.QnA.Tags = []string{"go"}

	got, err := a.Discover(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "How do goroutines work?", got[0].Title)
	assert.Equal(t, []string{"go", "concurrency"}, got[0].Keywords)
	assert.Equal(t, 140.0, got[0].Metric("votes"))
}

func TestVideoVirality(t *testing.T) {
	a := NewVideoAdapter("", "")
	r := model.RawIdea{
		PublishedAt: time.Now(),
		Metrics: map[string]float64{
			"views":      100_000, // capped term: 30
			"engagement": 0.01,    // 0.01*10000=100, capped at 40
		},
	}
	// 30 + 40 + ~30 recency
	assert.InDelta(t, 100.0, a.Virality(r), 0.01)
}

func TestKeywordViralityUsesTrendInsteadOfRecency(t *testing.T) {
	a := NewKeywordAdapter("", "")
	rising := model.RawIdea{Metrics: map[string]float64{"volume": 10_000, "competition": 0.5, "trend": 30}}
	declining := model.RawIdea{Metrics: map[string]float64{"volume": 10_000, "competition": 0.5, "trend": 0}}
	assert.InDelta(t, 85.0, a.Virality(rising), 0.01)
	assert.InDelta(t, 55.0, a.Virality(declining), 0.01)
}

func TestRegistrySelectDropsUnknownSources(t *testing.T) {
	reg := NewRegistry(
		NewForumAdapter("https://www.reddit.com", "test/1.0"),
		NewWebcrawlAdapter(),
	)
	picked := reg.Select([]string{model.SourceForum, "nonsense", model.SourceWebcrawl})
	require.Len(t, picked, 2)
	assert.Equal(t, model.SourceForum, picked[0].Name())
	assert.Equal(t, model.SourceWebcrawl, picked[1].Name())
}
