package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/seojinpark/krxlens/internal/cache"
	"github.com/seojinpark/krxlens/internal/handlers"
	"github.com/seojinpark/krxlens/internal/middleware"
	"github.com/seojinpark/krxlens/internal/services"
)

// serveCmd implements 'krxlens serve'
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the read-only fundamentals HTTP API",
	Long: `Serve KOSPI fundamentals over HTTP. The snapshot is cached in memory,
preloaded at startup, and refreshed when its trading date rolls over.

Endpoints:
  GET /api/health
  GET /api/sectors
  GET /api/fundamentals?sector=&limit=`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	fundSvc := services.NewFundamentalsService(newKRXClient(), cache.NewSnapshotCache())
	marketHandler := handlers.NewMarketHandler(fundSvc)

	// Preload the snapshot so the first request is instant. A failed preload
	// is not fatal; the first request retries the refresh.
	if _, _, err := fundSvc.Snapshot(context.Background()); err != nil {
		log.Warnf("Failed to preload fundamentals snapshot: %v", err)
	}

	router := gin.Default()
	router.Use(middleware.CORS())

	router.GET("/api/health", marketHandler.Health)
	router.GET("/api/sectors", marketHandler.Sectors)
	router.GET("/api/fundamentals", marketHandler.Fundamentals)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	log.Info("Server exited")
	return nil
}
