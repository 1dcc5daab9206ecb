package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"daehyub/dealwatcher/config"
	"daehyub/dealwatcher/internal/domain"
	"daehyub/dealwatcher/internal/orchestrator"
	"daehyub/dealwatcher/internal/repository"
	"daehyub/dealwatcher/internal/scraper"
	"daehyub/dealwatcher/internal/store"
	"daehyub/dealwatcher/logger"
	"daehyub/dealwatcher/services/cache"
	"daehyub/dealwatcher/services/review"
	"daehyub/dealwatcher/services/worker"

	"github.com/joho/godotenv"
)

// Search filler words that hurt marketplace recall
var defaultStopWords = []string{"new", "sealed", "genuine", "official", "the", "a", "an"}

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Int("batch_size", cfg.RefreshBatchSize).
		Int("max_concurrent_scrapes", cfg.MaxConcurrentScrapes).
		Bool("render_enabled", cfg.RenderEnabled).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services := initializeServices(ctx, &cfg)
	defer services.Cleanup()

	// Assemble the scraper
	var renderer scraper.Renderer
	if cfg.RenderEnabled {
		renderer = scraper.NewChromeRenderer()
		log.Info().Msg("JS render fallback enabled")
	}

	scr := scraper.New(scraper.Options{
		Renderer:      renderer,
		Cache:         services.Cache,
		Reviewer:      services.Review,
		ScrapeTimeout: cfg.ScrapeTimeout,
		RenderTimeout: cfg.RenderTimeout,
		BlockTime:     cfg.BlockTime,
	})

	// Create store clients
	clients := createStoreClients(&cfg)
	log.Info().Int("store_count", len(clients)).Msg("Created store clients")

	// Assemble the orchestrator and worker
	orch := orchestrator.New(services.Repository, scr, clients, cfg.MaxConcurrentScrapes)

	w := worker.NewWorker(ctx, orch, services.Review, worker.Config{
		BatchSize:          cfg.RefreshBatchSize,
		MaxResultsPerQuery: cfg.MaxResultsPerQuery,
		StoreKeys:          cfg.StoreKeys,
		RefreshInterval:    cfg.RefreshInterval,
		SweepInterval:      cfg.SweepInterval,
		IngestInterval:     cfg.IngestInterval,
	})

	// Start worker in a goroutine
	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting deal watcher worker")
		workerDone <- w.Start()
	}()

	// Wait for shutdown signal or worker exit
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	case err := <-workerDone:
		if err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Worker exited with error")
		} else {
			log.Info().Msg("Worker exited normally")
		}
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
}

// Services holds all the initialized services
type Services struct {
	Repository *repository.RedisRepository
	Cache      cache.CacheService
	Review     review.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Review != nil {
		s.Review.Close()
	}
	if s.Repository != nil {
		s.Repository.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{}

	services.Repository = repository.NewRedisRepository(cfg.RedisAddr, cfg.RedisDB)
	logger.Info("Connected to Redis at %s (DB: %d)", cfg.RedisAddr, cfg.RedisDB)

	services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)

	if cfg.ReviewEnabled {
		services.Review = review.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.ReviewStream, cfg.ReviewStreamMaxLength)
		logger.Info("Manual review stream enabled: %s", cfg.ReviewStream)
	}

	return services
}

// createStoreClients creates a client per configured marketplace
func createStoreClients(cfg *config.Config) []store.Client {
	filter := store.NewStopWordFilter(defaultStopWords)

	var clients []store.Client
	for _, key := range cfg.StoreKeys {
		storeType, ok := domain.ParseStoreType(key)
		if !ok {
			logger.Warn("Unknown store key in configuration: %s", key)
			continue
		}

		switch storeType {
		case domain.StoreEbay:
			tokens := store.NewStaticTokenProvider(cfg.EbayAPIToken)
			clients = append(clients, store.NewSearchClient(storeType, cfg.EbaySearchURL, tokens, filter))
		default:
			// No search client for this marketplace yet; ingestion will
			// log the skip and refresh still works via selector profiles
			logger.Info("No search client for store %s", key)
		}
	}

	return clients
}
