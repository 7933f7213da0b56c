package handlers

import (
	"net/http"
	"time"

	"voice-call-relay/internal/agent"
)

// ServiceName identifies the relay in health responses.
const ServiceName = "voice-call-relay"

// HealthHandler handles health check requests.
type HealthHandler struct {
	agent *agent.Static
	stage string
	now   func() time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(static *agent.Static, stage string) *HealthHandler {
	return &HealthHandler{agent: static, stage: stage, now: time.Now}
}

// HealthResponse is the response structure for health checks.
type HealthResponse struct {
	OK        bool        `json:"ok"`
	Status    string      `json:"status"`
	Service   string      `json:"service"`
	Stage     string      `json:"stage"`
	Timestamp string      `json:"timestamp"`
	Agent     AgentHealth `json:"agent"`
}

// AgentHealth reports whether the static agent configuration loaded or fell back.
type AgentHealth struct {
	PromptLoaded bool `json:"prompt_loaded"`
	SchemaLoaded bool `json:"schema_loaded"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		OK:        true,
		Status:    "healthy",
		Service:   ServiceName,
		Stage:     h.stage,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	}

	// Missing prompt or schema is degraded mode, the relay keeps serving.
	if h.agent != nil {
		response.Agent = AgentHealth{
			PromptLoaded: h.agent.PromptLoaded(),
			SchemaLoaded: h.agent.SchemaLoaded(),
		}
	}
	if !response.Agent.PromptLoaded || !response.Agent.SchemaLoaded {
		response.Status = "degraded"
	}

	writeJSON(w, http.StatusOK, response)
}
