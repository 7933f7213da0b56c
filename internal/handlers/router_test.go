package handlers

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"voice-call-relay/internal/agent"
	"voice-call-relay/internal/services/hooks"
	"voice-call-relay/internal/services/realtime"
	"voice-call-relay/internal/utils"
)

type routerFixture struct {
	router http.Handler
	voice  *upstream
	catch  *upstream
	status *upstream
}

func newRouterFixture(t *testing.T, static *agent.Static) *routerFixture {
	voice := newUpstream(t, http.StatusOK, `{"session_id":"sess_1"}`)
	catch := newUpstream(t, http.StatusOK, `{}`)
	status := newUpstream(t, http.StatusOK, `{}`)

	router := NewRouter(RouterConfig{
		Call:   NewCallHandler(realtime.NewClient(voice.URL, "k"), static, "+4930", "https://relay/events", nil),
		Events: NewEventHandler(hooks.NewNotifier(), catch.URL, status.URL, nil),
		Health: NewHealthHandler(static, "test"),
	})
	return &routerFixture{router: router, voice: voice, catch: catch, status: status}
}

func TestRouter_RoutesAndMethods(t *testing.T) {
	f := newRouterFixture(t, testAgent())

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPost, PathCallStart, http.StatusBadRequest},
		{http.MethodGet, PathCallStart, http.StatusMethodNotAllowed},
		{http.MethodPost, PathEvents, http.StatusOK},
		{http.MethodPut, PathEvents, http.StatusMethodNotAllowed},
		{http.MethodGet, PathHealth, http.StatusOK},
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`))
			rec := httptest.NewRecorder()
			f.router.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestRouter_RequestIDPropagation(t *testing.T) {
	f := newRouterFixture(t, testAgent())

	req := httptest.NewRequest(http.MethodPost, PathCallStart, strings.NewReader(`{"lead":{"phone":"+491"}}`))
	req.Header.Set(utils.RequestIDHeader, "trace-77")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "trace-77", rec.Header().Get(utils.RequestIDHeader))
	require.Len(t, f.voice.Requests(), 1)
	assert.Equal(t, "trace-77", f.voice.Requests()[0].Header.Get(utils.RequestIDHeader))

	req = httptest.NewRequest(http.MethodPost, PathEvents, strings.NewReader(`{"type":"completed"}`))
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	generated := rec.Header().Get(utils.RequestIDHeader)
	assert.Len(t, generated, 36)
	require.Len(t, f.status.Requests(), 1)
	assert.Equal(t, generated, f.status.Requests()[0].Header.Get(utils.RequestIDHeader))
}

func TestRouter_UnmatchedRoutesAreTaggedAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	router := NewRouter(RouterConfig{
		Call:   http.NotFoundHandler(),
		Events: http.NotFoundHandler(),
		Logger: zap.New(core),
	})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/nope", http.StatusNotFound},
		{http.MethodGet, PathCallStart, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set(utils.RequestIDHeader, "trace-"+tt.path)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "trace-"+tt.path, rec.Header().Get(utils.RequestIDHeader))

			entries := logs.FilterMessage("HTTP request").FilterField(zap.String("path", tt.path)).All()
			require.Len(t, entries, 1)
			assert.Equal(t, int64(tt.want), entries[0].ContextMap()["status"])
			assert.Equal(t, "trace-"+tt.path, entries[0].ContextMap()["requestID"])
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	f := newRouterFixture(t, testAgent())

	req := httptest.NewRequest(http.MethodOptions, PathCallStart, nil)
	req.Header.Set("Origin", "https://crm.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, f.voice.Requests())
}

func TestHealth_ReportsDegradedAgentConfig(t *testing.T) {
	h := NewHealthHandler(agent.New("", nil, nil), "prod")
	h.now = func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) }

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PathHealth, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"ok": true,
		"status": "degraded",
		"service": "voice-call-relay",
		"stage": "prod",
		"timestamp": "2026-10-18T12:00:00Z",
		"agent": {"prompt_loaded": false, "schema_loaded": false}
	}`, rec.Body.String())
}

func TestHealth_Healthy(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(testAgent(), "dev").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PathHealth, nil))

	out := decodeResponse(t, rec)
	assert.Equal(t, "healthy", out["status"])
}

func TestLambdaAdapter_Events(t *testing.T) {
	f := newRouterFixture(t, testAgent())
	adapter := NewLambdaAdapter(f.router)

	resp, err := adapter.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       PathEvents,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       `{"type":"tool_call","name":"finalize_outcome","arguments":{"a":1}}`,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, resp.Body)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.NotEmpty(t, resp.Headers[http.CanonicalHeaderKey(utils.RequestIDHeader)])
	require.Len(t, f.catch.Requests(), 1)
	assert.JSONEq(t, `{"a":1}`, f.catch.Requests()[0].Body)
}

func TestLambdaAdapter_Base64CallStart(t *testing.T) {
	f := newRouterFixture(t, testAgent())
	adapter := NewLambdaAdapter(f.router)

	body := base64.StdEncoding.EncodeToString([]byte(`{"lead":{"phone":"+4917600"}}`))
	resp, err := adapter.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            PathCallStart,
		Body:            body,
		IsBase64Encoded: true,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true,"session_id":"sess_1"}`, resp.Body)
}

func TestLambdaAdapter_InvalidBase64(t *testing.T) {
	adapter := NewLambdaAdapter(http.NotFoundHandler())

	_, err := adapter.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            PathEvents,
		Body:            "%%%",
		IsBase64Encoded: true,
	})
	assert.Error(t, err)
}

func TestLambdaAdapter_QueryAndHeaders(t *testing.T) {
	var got *http.Request
	adapter := NewLambdaAdapter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Add("X-Multi", "a")
		w.Header().Add("X-Multi", "b")
		w.WriteHeader(http.StatusAccepted)
	}))

	resp, err := adapter.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:                      http.MethodGet,
		Path:                            "/health",
		QueryStringParameters:           map[string]string{"verbose": "1"},
		MultiValueQueryStringParameters: map[string][]string{"tag": {"x", "y"}},
		MultiValueHeaders:               map[string][]string{"X-Request-Id": {"abc"}},
	})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "1", got.URL.Query().Get("verbose"))
	assert.Equal(t, []string{"x", "y"}, got.URL.Query()["tag"])
	assert.Equal(t, "abc", got.Header.Get(utils.RequestIDHeader))
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "a,b", resp.Headers["X-Multi"])
	assert.Equal(t, []string{"a", "b"}, resp.MultiValueHeaders["X-Multi"])
}
