package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trogers1052/trademind/internal/api"
	"github.com/trogers1052/trademind/internal/cache"
	"github.com/trogers1052/trademind/internal/clock"
	"github.com/trogers1052/trademind/internal/config"
	"github.com/trogers1052/trademind/internal/database"
	"github.com/trogers1052/trademind/internal/guardian"
	"github.com/trogers1052/trademind/internal/journal"
	"github.com/trogers1052/trademind/internal/kafka"
	"github.com/trogers1052/trademind/internal/logging"
	"github.com/trogers1052/trademind/internal/models"
	"github.com/trogers1052/trademind/internal/redis"
	"github.com/trogers1052/trademind/internal/rules"
	"github.com/trogers1052/trademind/internal/websocket"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger := logging.New(cfg.Log)

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	loc, _ := cfg.Location()

	// Connect to database
	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	logger.Info().Msg("connected to PostgreSQL database")

	// Run migrations
	applied, err := database.Migrate(cfg.Journal.MigrationsPath, cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to run database migrations")
	}
	if !applied {
		logger.Info().Msg("no migrations to apply; database is up to date")
	}

	// Connect to Redis, falling back to an in-process cache
	var store cache.Store
	optional := map[string]api.Pinger{"redis": nil}
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to connect to Redis, using in-process cache")
		store = cache.NewMemoryStore()
	} else {
		defer redisClient.Close()
		store = redisClient
		optional["redis"] = redisClient
		logger.Info().Str("addr", cfg.Redis.Address()).Msg("connected to Redis cache")
	}
	fetchCache := cache.New(store, cfg.Redis.CacheTTL, cfg.Redis.StaleAfter, clock.System, logger)

	seeds, err := rules.Defaults()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load default rules")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub()

	// Journal events go through Kafka when enabled, otherwise straight to
	// this instance's live sockets
	var publisher journal.Publisher = hub
	var consumer *kafka.JournalConsumer
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.JournalTopic, logger)
		defer producer.Close()
		publisher = producer
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("Kafka producer initialized")

		consumer = kafka.NewJournalConsumer(
			cfg.Kafka.Brokers,
			cfg.Kafka.JournalTopic,
			consumerGroup(cfg.Kafka.ConsumerGroup),
			hub,
			logger,
		)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("journal consumer error")
			}
		}()
	}

	journalService := journal.NewService(db, fetchCache, publisher, clock.System, logger, journal.Options{
		Location: loc,
		Defaults: models.ProfileDefaults{
			PerTradeRisk:   cfg.Journal.DefaultPerTradeRisk,
			DailyLossLimit: cfg.Journal.DefaultDailyLossLimit,
		},
		RuleSeeds:    seeds,
		TopSymbols:   cfg.Journal.TopSymbols,
		RecentTrades: cfg.Journal.RecentTrades,
	})
	drafts := guardian.NewDraftStore(cfg.Journal.DraftTTL, clock.System)
	guardianService := guardian.NewService(drafts, journalService, clock.System, logger)
	live := websocket.NewHandler(hub, journalService, clock.System, loc, logger)

	// Set up HTTP handler and routes
	handler := api.NewHandler(api.Dependencies{
		Journal:  journalService,
		Guardian: guardianService,
		Live:     live,
		Now:      clock.System,
		Logger:   logger,
		Required: map[string]api.Pinger{"postgres": db},
		Optional: optional,
	})
	router := api.SetupRoutes(handler)

	// Create HTTP server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().Str("addr", addr).Str("timezone", loc.String()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	// Cancel context to stop the Kafka consumer
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Int("open_drafts", drafts.Len()).Msg("server stopped")
}

// consumerGroup gives each instance its own group so every instance sees
// every journal event for its sockets
func consumerGroup(base string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return base + "-live"
	}
	return base + "-live-" + host
}
