package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"ideascout/internal/config"
	"ideascout/internal/model"
)

// Runner triggers one discovery run; satisfied by the orchestrator.
type Runner interface {
	Run(ctx context.Context, brandID string, sources []string) (*model.DiscoveryRun, error)
}

// DiscoveryWorker runs discovery for each brand on its cron schedule.
type DiscoveryWorker struct {
	Runner Runner
	Brands []config.BrandConfig
}

func (w *DiscoveryWorker) Start(ctx context.Context) error {
	c := cron.New()
	for _, brand := range w.Brands {
		brand := brand
		_, err := c.AddFunc(brand.Schedule, func() {
			w.runOnce(ctx, brand)
		})
		if err != nil {
			return fmt.Errorf("schedule brand %s (%q): %w", brand.ID, brand.Schedule, err)
		}
		slog.Info("discovery worker: brand scheduled", "brand", brand.ID, "schedule", brand.Schedule)
	}
	c.Start()
	<-ctx.Done()
	// Let an in-flight run finish before reporting shutdown.
	<-c.Stop().Done()
	return nil
}

func (w *DiscoveryWorker) runOnce(ctx context.Context, brand config.BrandConfig) {
	run, err := w.Runner.Run(ctx, brand.ID, nil)
	if err != nil {
		slog.Error("discovery worker: run failed", "brand", brand.ID, "error", err)
		return
	}
	slog.Info("discovery worker: run finished", "brand", brand.ID,
		"run", run.ID, "status", run.Status, "persisted", run.Persisted)
}
