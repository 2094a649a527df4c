package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/koereq/docpipeline/internal/audit"
	"github.com/koereq/docpipeline/internal/config"
	"github.com/koereq/docpipeline/internal/handlers"
	"github.com/koereq/docpipeline/internal/processor"
	"github.com/koereq/docpipeline/internal/prompts"
	"github.com/koereq/docpipeline/internal/router"
	"github.com/koereq/docpipeline/internal/services"
	"github.com/koereq/docpipeline/internal/store"
	"github.com/koereq/docpipeline/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	// Local persistence
	st, err := store.New(cfg.DataDir)
	if err != nil {
		logger.Fatal("Failed to initialize store", "error", err)
	}

	// Audit log
	auditLog := audit.New(cfg.DataDir)
	defer auditLog.Close()
	auditLog.Log(audit.EventAppLaunch, "")

	// Remote services: real clients when configured, stubs otherwise
	set := services.Select(cfg, logger)
	proc := processor.New(set, logger)

	// Handlers
	promptManager := prompts.NewManager(st)
	analysisHandler := handlers.NewAnalysisHandler(proc, auditLog, logger, cfg.MaxUploadSize)
	sessionHandler := handlers.NewSessionHandler(st, auditLog, logger)
	promptHandler := handlers.NewPromptHandler(promptManager, logger)

	// Setup HTTP router
	handler := router.New(analysisHandler, sessionHandler, promptHandler, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
