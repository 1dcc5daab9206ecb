package worker

import (
	"context"
	"time"

	"daehyub/dealwatcher/internal/domain"
	"daehyub/dealwatcher/internal/orchestrator"
	"daehyub/dealwatcher/logger"
	"daehyub/dealwatcher/services/review"
)

// DealPipeline is the orchestrator surface the worker schedules
type DealPipeline interface {
	RefreshDeals(ctx context.Context, batchSize int) (*orchestrator.Report, error)
	SweepExpiredDeals(ctx context.Context) (int, error)
	IngestNewListings(ctx context.Context, storeType domain.StoreType, maxResultsPerQuery int, queries []orchestrator.Query) (int, error)
	BuildQueries(ctx context.Context) ([]orchestrator.Query, error)
}

// Worker drives the three pipeline operations on independent intervals.
// Runs are serialized per operation: the external trigger is this worker
// and it never overlaps two runs of the same operation.
type Worker struct {
	ctx      context.Context
	pipeline DealPipeline
	reviewer review.Publisher // nil unless manual review surfacing is enabled
	log      *logger.Logger

	batchSize          int
	maxResultsPerQuery int
	storeKeys          []string

	refreshInterval time.Duration
	sweepInterval   time.Duration
	ingestInterval  time.Duration
}

// Config carries the worker's scheduling parameters
type Config struct {
	BatchSize          int
	MaxResultsPerQuery int
	StoreKeys          []string
	RefreshInterval    time.Duration
	SweepInterval      time.Duration
	IngestInterval     time.Duration
}

// NewWorker creates a new worker. reviewer may be nil when manual review
// surfacing is disabled.
func NewWorker(ctx context.Context, pipeline DealPipeline, reviewer review.Publisher, cfg Config) *Worker {
	return &Worker{
		ctx:                ctx,
		pipeline:           pipeline,
		reviewer:           reviewer,
		log:                logger.ForWorker(),
		batchSize:          cfg.BatchSize,
		maxResultsPerQuery: cfg.MaxResultsPerQuery,
		storeKeys:          cfg.StoreKeys,
		refreshInterval:    cfg.RefreshInterval,
		sweepInterval:      cfg.SweepInterval,
		ingestInterval:     cfg.IngestInterval,
	}
}

// Start runs the periodic loops until the context is cancelled
func (w *Worker) Start() error {
	go w.loop("refresh", w.refreshInterval, w.runRefresh)
	go w.loop("sweep", w.sweepInterval, w.runSweep)
	go w.loop("ingest", w.ingestInterval, w.runIngest)

	<-w.ctx.Done()
	return w.ctx.Err()
}

// loop runs fn immediately and then on every tick
func (w *Worker) loop(name string, interval time.Duration, fn func()) {
	fn()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info().Str("loop", name).Msg("Stopping loop")
			return
		case <-ticker.C:
			fn()
		}
	}
}

func (w *Worker) runRefresh() {
	start := time.Now()
	w.log.Info().Int("batch_size", w.batchSize).Msg("Refresh run starting")

	report, err := w.pipeline.RefreshDeals(w.ctx, w.batchSize)
	if err != nil {
		w.log.Error().Err(err).Msg("Refresh run failed")
		return
	}

	w.log.Info().
		Int64("total", report.Total).
		Int64("updated", report.Updated).
		Int64("expired", report.Expired).
		Int64("sold", report.Sold).
		Int64("errors", report.Errors).
		Int64("unchanged", report.Unchanged()).
		Dur("elapsed", time.Since(start)).
		Msg("Refresh run finished")

	// Blocked scrapes appended to the review stream this cycle; keep it
	// bounded to its configured maximum length.
	if w.reviewer != nil {
		if err := w.reviewer.Trim(); err != nil {
			w.log.Warn().Err(err).Msg("Failed to trim review stream")
		}
	}
}

func (w *Worker) runSweep() {
	start := time.Now()
	w.log.Info().Msg("Expiration sweep starting")

	expired, err := w.pipeline.SweepExpiredDeals(w.ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("Expiration sweep failed")
		return
	}

	w.log.Info().
		Int("expired", expired).
		Dur("elapsed", time.Since(start)).
		Msg("Expiration sweep finished")
}

func (w *Worker) runIngest() {
	start := time.Now()
	w.log.Info().Strs("stores", w.storeKeys).Msg("Listing ingestion starting")

	queries, err := w.pipeline.BuildQueries(w.ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("Failed to build discovery queries")
		return
	}

	created := 0
	for _, key := range w.storeKeys {
		storeType, ok := domain.ParseStoreType(key)
		if !ok {
			w.log.Info().Str("store", key).Msg("Unknown store key, skipping")
			continue
		}

		count, err := w.pipeline.IngestNewListings(w.ctx, storeType, w.maxResultsPerQuery, queries)
		if err != nil {
			w.log.Error().Err(err).Str("store", key).Msg("Listing ingestion failed")
			continue
		}
		created += count
	}

	w.log.Info().
		Int("created", created).
		Int("queries", len(queries)).
		Dur("elapsed", time.Since(start)).
		Msg("Listing ingestion finished")
}
