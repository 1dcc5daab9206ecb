package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"daehyub/dealwatcher/internal/domain"
	"daehyub/dealwatcher/internal/orchestrator"

	"github.com/stretchr/testify/assert"
)

type fakePipeline struct {
	mu       sync.Mutex
	refreshs int
	sweeps   int
	ingests  []domain.StoreType
	queries  int
}

func (f *fakePipeline) RefreshDeals(ctx context.Context, batchSize int) (*orchestrator.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshs++
	return &orchestrator.Report{Total: int64(batchSize)}, nil
}

func (f *fakePipeline) SweepExpiredDeals(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweeps++
	return 0, nil
}

func (f *fakePipeline) IngestNewListings(ctx context.Context, storeType domain.StoreType, maxResultsPerQuery int, queries []orchestrator.Query) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ingests = append(f.ingests, storeType)
	return len(queries), nil
}

func (f *fakePipeline) BuildQueries(ctx context.Context) ([]orchestrator.Query, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	return []orchestrator.Query{{ProductID: "p1", Text: "widget"}}, nil
}

type fakeReviewer struct {
	mu    sync.Mutex
	trims int
}

func (r *fakeReviewer) Publish(store, url string) error { return nil }

func (r *fakeReviewer) Trim() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trims++
	return nil
}

func (r *fakeReviewer) Close() error { return nil }

func TestWorker_RunsEachOperationImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pipeline := &fakePipeline{}

	w := NewWorker(ctx, pipeline, nil, Config{
		BatchSize:          10,
		MaxResultsPerQuery: 5,
		StoreKeys:          []string{"ebay", "bogus"},
		RefreshInterval:    time.Hour,
		SweepInterval:      time.Hour,
		IngestInterval:     time.Hour,
	})

	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	// Each loop runs once on startup; give them a moment to land
	time.Sleep(100 * time.Millisecond)
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)

	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()
	assert.Equal(t, 1, pipeline.refreshs)
	assert.Equal(t, 1, pipeline.sweeps)
	assert.Equal(t, 1, pipeline.queries)

	// The unknown store key is skipped, not passed through
	assert.Equal(t, []domain.StoreType{domain.StoreEbay}, pipeline.ingests)
}

func TestWorker_TrimsReviewStreamAfterRefresh(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pipeline := &fakePipeline{}
	reviewer := &fakeReviewer{}

	w := NewWorker(ctx, pipeline, reviewer, Config{
		BatchSize:       10,
		StoreKeys:       []string{"ebay"},
		RefreshInterval: time.Hour,
		SweepInterval:   time.Hour,
		IngestInterval:  time.Hour,
	})

	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	reviewer.mu.Lock()
	defer reviewer.mu.Unlock()
	assert.Equal(t, 1, reviewer.trims)
}
