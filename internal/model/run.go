package model

import "time"

// RunStatus is the lifecycle state of one discovery run.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunPartial   RunStatus = "partial"
	RunFailed    RunStatus = "failed"
)

// SourceStat records one source's outcome within a run.
type SourceStat struct {
	Found int    `json:"found"`
	Error string `json:"error,omitempty"`
}

// DiscoveryRun is the append-only record of one orchestrator execution for a
// brand. Callers observe completion and partial failures through it; the
// trigger itself returns as soon as scheduling succeeds.
type DiscoveryRun struct {
	ID            string                `json:"id"`
	BrandID       string                `json:"brand_id"`
	Sources       []string              `json:"sources"`
	Status        RunStatus             `json:"status"`
	StartedAt     time.Time             `json:"started_at"`
	FinishedAt    time.Time             `json:"finished_at"`
	SourceStats   map[string]SourceStat `json:"source_stats,omitempty"`
	Persisted     int                   `json:"persisted"`
	Duplicates    int                   `json:"duplicates"`
	BelowMinScore int                   `json:"below_min_score"`
	Capped        int                   `json:"capped"`
	Excluded      int                   `json:"excluded"`
	Errors        []string              `json:"errors,omitempty"`
}
