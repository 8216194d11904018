//go:build !lambda
// +build !lambda

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

	"github.com/dual-finance/governance-proposals/internal/config"
	"github.com/dual-finance/governance-proposals/internal/logger"
	"github.com/dual-finance/governance-proposals/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// It's often okay if the .env file is missing; variables may be set directly.
		log.Printf("Warning: .env file not found: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.InitLogger(cfg.Stage, cfg.Cluster)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	router := gin.New()
	router.Use(gin.Recovery())
	server.InitializeHandlers(ctx, cfg)
	server.InitializeRoutes(ctx, router, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second, // Prevent Slowloris attacks
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Port), zap.String("cluster", cfg.Cluster))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	// Give outstanding requests a deadline for completion
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Server exiting")
}
