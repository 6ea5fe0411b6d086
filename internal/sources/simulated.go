package sources

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"ideascout/internal/model"
)

var simulatedTopics = []string{
	"Beginner mistakes everyone makes",
	"The tool nobody talks about",
	"Why the old approach stopped working",
	"A 10-minute routine that actually sticks",
	"What changed this year and what it means",
	"The question every newcomer asks",
	"Behind the numbers: what the data shows",
	"Small habits with outsized results",
}

// simulatedIdeas generates deterministic placeholder records for degraded
// mode. Seeding from source, UTC day, and the caller's discriminators keeps
// output stable within a day so repeated runs dedupe naturally. Every record
// is flagged Simulated so it can never be mistaken for a real signal.
func simulatedIdeas(source string, n int, discriminators ...string) []model.RawIdea {
	day := time.Now().UTC().Truncate(24 * time.Hour)
	h := fnv.New64a()
	h.Write([]byte(source))
	h.Write([]byte(day.Format("2006-01-02")))
	for _, d := range discriminators {
		h.Write([]byte(d))
	}
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	if n <= 0 || n > len(simulatedTopics) {
		n = 3
	}
	out := make([]model.RawIdea, 0, n)
	perm := rng.Perm(len(simulatedTopics))
	for i := 0; i < n; i++ {
		topic := simulatedTopics[perm[i]]
		out = append(out, model.RawIdea{
			Source:      source,
			ExternalID:  fmt.Sprintf("sim-%s-%d-%d", source, rng.Int63n(1_000_000), i),
			Title:       topic,
			Description: "Placeholder signal generated while source credentials are unavailable.",
			URL:         fmt.Sprintf("https://example.invalid/%s/%d", source, i),
			PublishedAt: day.Add(time.Duration(1+rng.Intn(12)) * time.Hour),
			Metrics: map[string]float64{
				"upvotes":      float64(100 + rng.Intn(2000)),
				"ratio":        0.7 + rng.Float64()*0.3,
				"comments":     float64(rng.Intn(300)),
				"views":        float64(10_000 + rng.Intn(500_000)),
				"engagement":   0.001 + rng.Float64()*0.004,
				"reposts":      float64(rng.Intn(800)),
				"likes":        float64(rng.Intn(5_000)),
				"impressions":  float64(10_000 + rng.Intn(200_000)),
				"volume":       float64(500 + rng.Intn(20_000)),
				"competition":  rng.Float64(),
				"votes":        float64(rng.Intn(200)),
				"answers":      float64(rng.Intn(15)),
				"position":     float64(i),
				"content_size": float64(200 + rng.Intn(1500)),
			},
			Simulated: true,
		})
	}
	return out
}
