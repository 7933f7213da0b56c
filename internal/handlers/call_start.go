package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"voice-call-relay/internal/agent"
	"voice-call-relay/internal/models"
	"voice-call-relay/internal/services/realtime"
	"voice-call-relay/internal/utils"
)

// CallStarter starts an outbound call and returns its session id.
type CallStarter interface {
	StartCall(ctx context.Context, call *models.CallRequest) (string, error)
}

// CallHandler handles POST /call/start.
type CallHandler struct {
	starter    CallStarter
	agent      *agent.Static
	callerID   string
	webhookURL string
	logger     *zap.Logger
}

// NewCallHandler creates a new call handler.
func NewCallHandler(starter CallStarter, static *agent.Static, callerID, webhookURL string, logger *zap.Logger) *CallHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if static == nil {
		static = agent.New("", nil, nil)
	}
	return &CallHandler{
		starter:    starter,
		agent:      static,
		callerID:   callerID,
		webhookURL: webhookURL,
		logger:     logger,
	}
}

func (h *CallHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(utils.String("requestID", utils.RequestID(r.Context())))

	body, err := readBody(w, r)
	if err != nil {
		if errors.Is(err, errBodyTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, models.ErrInvalidBody.Error())
		return
	}

	lead, err := models.DecodeCallStart(bytes.NewReader(body))
	if err != nil {
		logger.Info("Rejected call start request", utils.Error(err))
		writeError(w, http.StatusBadRequest, clientMessage(err))
		return
	}

	call := models.NewCallRequest(lead, h.agent.Spec(), h.callerID, h.webhookURL)

	sessionID, err := h.starter.StartCall(r.Context(), call)
	if err != nil {
		fields := []zap.Field{
			utils.String("to", call.To),
			utils.Any("leadID", call.Context.LeadID),
			utils.Error(err),
		}
		var apiErr *realtime.APIError
		if errors.As(err, &apiErr) {
			fields = append(fields,
				utils.Int("status", apiErr.StatusCode),
				utils.String("body", apiErr.Body))
		}
		logger.Error("Failed to start call", fields...)
		writeError(w, http.StatusInternalServerError, ErrCodeCallStartFailed)
		return
	}

	logger.Info("Call started",
		utils.String("sessionID", sessionID),
		utils.Any("leadID", call.Context.LeadID))

	writeJSON(w, http.StatusOK, Response{OK: true, SessionID: sessionID})
}

// clientMessage strips decoder detail from validation errors.
func clientMessage(err error) string {
	for _, known := range []error{models.ErrMissingLead, models.ErrMissingPhone, models.ErrInvalidBody} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return models.ErrInvalidBody.Error()
}
