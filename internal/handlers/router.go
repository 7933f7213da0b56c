package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"voice-call-relay/internal/utils"
)

// Routes served by the relay.
const (
	PathCallStart = "/call/start"
	PathEvents    = "/events"
	PathHealth    = "/health"
)

// RouterConfig wires handlers into the router.
type RouterConfig struct {
	Call           http.Handler
	Events         http.Handler
	Health         http.Handler
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter builds the HTTP handler tree shared by the server and the Lambda adapter.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(MethodNotAllowed)

	r.Handle(PathCallStart, cfg.Call).Methods(http.MethodPost)
	r.Handle(PathEvents, cfg.Events).Methods(http.MethodPost)
	if cfg.Health != nil {
		r.Handle(PathHealth, cfg.Health).Methods(http.MethodGet)
		r.Handle("/api/health", cfg.Health).Methods(http.MethodGet)
	}

	// Wrapped outside the mux so unmatched routes are tagged and logged too.
	handler := requestIDMiddleware(accessLogMiddleware(logger)(r))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{utils.RequestIDHeader},
	})

	return c.Handler(handler)
}

// requestIDMiddleware reuses the caller's X-Request-ID or assigns a new one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(utils.RequestIDHeader)
		if id == "" {
			id = utils.NewRequestID()
		}
		w.Header().Set(utils.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(utils.WithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func accessLogMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("HTTP request",
				utils.String("method", r.Method),
				utils.String("path", r.URL.Path),
				utils.Int("status", rec.status),
				utils.Duration("duration", time.Since(start)),
				utils.String("requestID", utils.RequestID(r.Context())))
		})
	}
}
