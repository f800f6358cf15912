package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleet-tracker-backend/config"
	"fleet-tracker-backend/internal/api"
	"fleet-tracker-backend/internal/db"
	"fleet-tracker-backend/internal/monitor"
	"fleet-tracker-backend/internal/notification"
	"fleet-tracker-backend/internal/store"
	"fleet-tracker-backend/internal/ws"

	"github.com/SherClockHolmes/webpush-go"
)

func main() {
	logger := log.New(os.Stdout, "trackerd ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Seeding must finish before the listener starts: ingestion assumes the
	// fleet already exists.
	if err := appStore.SeedVehicles(ctx); err != nil {
		logger.Fatalf("failed to seed vehicles: %v", err)
	}

	hub := ws.NewHub()

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Println("VAPID keys are not configured; stale-vehicle push alerts are disabled")
		cfg.Monitor.Enabled = false
	}

	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions)
	mon := monitor.New(cfg, appStore, pool)
	go mon.Run(ctx)

	router := api.NewRouter(appStore, hub, &webpushOptions, api.RouterOptions{
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
		CacheTTL:        time.Duration(cfg.Server.CacheTTLSeconds) * time.Second,
		IndexFile:       "./web/index.html",
	})
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
