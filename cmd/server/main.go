// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/api"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/cache"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/config"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/service"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/store"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/store/erp"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/store/postgres"
	"github.com/andresuchdata/inventory-insights/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	if cfg.Server.Mode == "debug" {
		logger.SetLevel("debug")
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	inventoryStore, cleanup, err := buildStore(cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize inventory store")
	}
	defer cleanup()

	analyticsCache, err := cache.NewAnalyticsCache(cfg.Cache)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize analytics cache")
	}

	analyticsService := service.NewAnalyticsService(inventoryStore, analyticsCache, cfg.Engine)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{AnalyticsService: analyticsService}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Str("store_backend", cfg.Store.Backend).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

func buildStore(cfg *config.Config) (store.InventoryStore, func(), error) {
	switch cfg.Store.Backend {
	case "erp":
		return erp.NewClient(cfg.Store.ERPBaseURL, cfg.Store.ERPAPIKey), func() {}, nil
	default:
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewInventoryStore(db), func() { db.Close() }, nil
	}
}
