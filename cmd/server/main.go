package main

import (
	"context"
	"errors"
	"flag"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maatram_portal_backend/internal/app"
	"maatram_portal_backend/internal/config"
	"maatram_portal_backend/internal/event"
	"maatram_portal_backend/internal/firebase"
	platformElasticsearch "maatram_portal_backend/internal/platform/elasticsearch"

	"go.uber.org/zap"
)

func main() {
	syncEventsCmd := flag.NewFlagSet("sync-events", flag.ExitOnError)
	timeout := syncEventsCmd.Duration("timeout", 10*time.Minute, "Maximum duration of the sync run")

	if len(os.Args) > 1 && os.Args[1] == "sync-events" {
		if err := syncEventsCmd.Parse(os.Args[2:]); err != nil {
			log.Fatalf("FATAL: %v", err)
		}
		runEventSync(*timeout)
		return
	}

	startServer()
}

// runEventSync mirrors every stored event into Elasticsearch once and exits.
func runEventSync(timeout time.Duration) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration for sync: %v", err)
	}
	appLogger, cleanupLogger, err := app.ProvideLogger(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger for sync: %v", err)
	}
	defer cleanupLogger()

	if !cfg.SearchEnabled() {
		appLogger.Fatal("FATAL: ELASTICSEARCH_URL is not set; nothing to sync.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fb, err := firebase.NewFirebaseService(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("FATAL: Failed to initialize Firebase for sync", zap.Error(err))
	}
	store, closeStore, err := app.ProvideDocStore(ctx, cfg, fb, appLogger)
	if err != nil {
		appLogger.Fatal("FATAL: Failed to open document store for sync", zap.Error(err))
	}
	defer closeStore()

	esClient, err := platformElasticsearch.NewClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("FATAL: Failed to initialize Elasticsearch client for sync", zap.Error(err))
	}
	index := app.ProvideEventIndex(esClient, appLogger)
	events := event.NewService(event.NewDocRepository(store), app.ProvideSearchIndex(index), appLogger)

	job := app.ProvideEventIndexSyncJob(events, index, appLogger, cfg)
	n, err := job.RunOnce(ctx)
	if err != nil {
		appLogger.Error("Event synchronization failed", zap.Int("events_indexed", n), zap.Error(err))
		return
	}
	appLogger.Info("Event synchronization completed successfully.", zap.Int("events_indexed", n))
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	if server.EventIndex != nil {
		if err := server.EventIndex.EnsureIndex(context.Background()); err != nil {
			server.AppLogger.Error("Failed to create Elasticsearch events index. Search will fail until it exists.", zap.Error(err))
		}
	} else {
		server.AppLogger.Info("Elasticsearch not configured, skipping index creation.")
	}

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
	log.Println("INFO: Application exiting.")
}
