// Package main runs the voice call relay as a standalone HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"voice-call-relay/internal/app"
	"voice-call-relay/internal/config"
	"voice-call-relay/internal/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger first
	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()
	logger := utils.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	relay := app.New(ctx, cfg, logger)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           relay.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Voice call relay listening",
			utils.String("addr", server.Addr),
			utils.String("callsEndpoint", cfg.CallsEndpoint()),
			utils.String("eventsWebhook", cfg.EventsWebhookURL()),
			utils.String("stage", cfg.Stage))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", utils.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", utils.Error(err))
	}
}
