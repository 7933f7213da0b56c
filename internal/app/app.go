// Package app wires configuration, clients and handlers into the relay.
package app

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"voice-call-relay/internal/agent"
	"voice-call-relay/internal/config"
	"voice-call-relay/internal/handlers"
	"voice-call-relay/internal/services/hooks"
	"voice-call-relay/internal/services/realtime"
	s3service "voice-call-relay/internal/services/s3"
)

// App holds the process-wide dependencies of the relay.
type App struct {
	Config *config.Config
	Agent  *agent.Static
	Router http.Handler
}

// New loads the agent configuration and builds the router. Missing prompt or
// schema sources degrade to empty values.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	opts := agent.LoadOptions{
		PromptPath: cfg.PromptFile,
		SchemaPath: cfg.SchemaFile,
		Products:   cfg.Products,
	}
	if s3service.IsURI(cfg.PromptFile) || s3service.IsURI(cfg.SchemaFile) {
		svc, err := s3service.NewService(ctx, cfg.AWSRegion, logger)
		if err != nil {
			logger.Warn("S3 unavailable, remote agent configuration will fall back", zap.Error(err))
		} else {
			opts.Remote = svc
		}
	}
	static := agent.Load(ctx, opts, logger)

	httpClient := &http.Client{Timeout: cfg.ClientTimeout}
	voice := realtime.NewClient(cfg.CallsEndpoint(), cfg.RealtimeAPIKey,
		realtime.WithHTTPClient(httpClient),
		realtime.WithLogger(logger))
	notifier := hooks.NewNotifier(hooks.WithHTTPClient(httpClient))

	if cfg.RealtimeAPIKey == "" {
		logger.Warn("REALTIME_API_KEY is not set, call starts will be rejected upstream")
	}
	if cfg.CatchHookURL == "" || cfg.StatusHookURL == "" {
		logger.Warn("Hook URLs incomplete, affected events will only be logged",
			zap.Bool("catchHook", cfg.CatchHookURL != ""),
			zap.Bool("statusHook", cfg.StatusHookURL != ""))
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Call:           handlers.NewCallHandler(voice, static, cfg.CallerID, cfg.EventsWebhookURL(), logger),
		Events:         handlers.NewEventHandler(notifier, cfg.CatchHookURL, cfg.StatusHookURL, logger),
		Health:         handlers.NewHealthHandler(static, cfg.Stage),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	})

	return &App{Config: cfg, Agent: static, Router: router}
}
