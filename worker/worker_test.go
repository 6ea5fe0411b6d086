package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideascout/internal/config"
	"ideascout/internal/model"
)

type fakeRunner struct {
	called chan string
}

func (f *fakeRunner) Run(ctx context.Context, brandID string, sources []string) (*model.DiscoveryRun, error) {
	select {
	case f.called <- brandID:
	default:
	}
	return &model.DiscoveryRun{ID: "run-1", BrandID: brandID, Status: model.RunCompleted}, nil
}

func TestDiscoveryWorkerRejectsBadSchedule(t *testing.T) {
	w := &DiscoveryWorker{
		Runner: &fakeRunner{called: make(chan string, 1)},
		Brands: []config.BrandConfig{{ID: "brand-1", Schedule: "not a cron expr"}},
	}
	err := w.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brand-1")
}

func TestDiscoveryWorkerTriggersRuns(t *testing.T) {
	runner := &fakeRunner{called: make(chan string, 1)}
	w := &DiscoveryWorker{
		Runner: runner,
		Brands: []config.BrandConfig{{ID: "brand-1", Schedule: "@every 100ms"}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	select {
	case brand := <-runner.called:
		assert.Equal(t, "brand-1", brand)
	case <-time.After(3 * time.Second):
		t.Fatal("discovery run was never triggered")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestManagerStopsWithContext(t *testing.T) {
	started := make(chan struct{})
	w := workerFunc(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewManager(w).Start(ctx) }()

	<-started
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("manager did not stop after cancellation")
	}
}

type workerFunc func(ctx context.Context) error

func (f workerFunc) Start(ctx context.Context) error { return f(ctx) }
