package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"voice-call-relay/internal/models"
	"voice-call-relay/internal/services/hooks"
	"voice-call-relay/internal/utils"
)

// Forwarder delivers payloads to automation hooks.
type Forwarder interface {
	Notify(ctx context.Context, url string, body []byte) hooks.Result
	NotifyJSON(ctx context.Context, url string, v any) hooks.Result
}

// EventHandler handles POST /events.
type EventHandler struct {
	forwarder     Forwarder
	catchHookURL  string
	statusHookURL string
	logger        *zap.Logger
}

// NewEventHandler creates a new event relay handler.
func NewEventHandler(forwarder Forwarder, catchHookURL, statusHookURL string, logger *zap.Logger) *EventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHandler{
		forwarder:     forwarder,
		catchHookURL:  catchHookURL,
		statusHookURL: statusHookURL,
		logger:        logger,
	}
}

// ServeHTTP always acknowledges with 200 so the voice API never redelivers.
func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(utils.String("requestID", utils.RequestID(r.Context())))

	body, err := readBody(w, r)
	if err != nil {
		logger.Warn("Failed to read event body", utils.Error(err))
		writeJSON(w, http.StatusOK, Response{OK: true})
		return
	}

	evt, err := models.ParseEvent(body)
	if err != nil {
		logger.Warn("Ignoring malformed event", utils.Error(err))
		writeJSON(w, http.StatusOK, Response{OK: true})
		return
	}

	// Forward failures were logged by Relay and are not reported to the caller.
	_ = h.Relay(context.WithoutCancel(r.Context()), evt)

	writeJSON(w, http.StatusOK, Response{OK: true})
}

// Relay forwards evt to the hook its classification selects and logs the outcome.
// Events with no route produce a zero Result.
func (h *EventHandler) Relay(ctx context.Context, evt *models.Event) hooks.Result {
	route := evt.Classify()
	logger := h.logger.With(
		utils.String("requestID", utils.RequestID(ctx)),
		utils.String("eventType", evt.Type),
		utils.String("route", route.String()))

	var result hooks.Result
	switch route {
	case models.RouteOutcome:
		result = h.forwarder.Notify(ctx, h.catchHookURL, evt.OutcomePayload())
	case models.RouteStatus:
		result = h.forwarder.NotifyJSON(ctx, h.statusHookURL, evt.StatusUpdate())
	default:
		logger.Debug("Event not forwarded")
		return result
	}

	if !result.Delivered() {
		logger.Warn("Failed to forward event",
			utils.String("url", result.URL),
			utils.Int("status", result.StatusCode),
			utils.Error(result.Err))
		return result
	}

	logger.Info("Event forwarded",
		utils.Int("status", result.StatusCode),
		utils.Duration("duration", result.Duration))
	return result
}
