package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/cyberguardian/platform/internal/auth/jwt"
	"github.com/cyberguardian/platform/internal/contact"
	"github.com/cyberguardian/platform/internal/logging"
	"github.com/cyberguardian/platform/internal/metrics"
	"github.com/cyberguardian/platform/internal/validation"
)

type fakeTokens map[string]*jwt.Claims

func (f fakeTokens) ValidateToken(token string) (*jwt.Claims, error) {
	if c, ok := f[token]; ok {
		return c, nil
	}
	return nil, jwt.ErrInvalidToken
}

type okSender struct{}

func (okSender) Send(context.Context, contact.Message) error { return nil }

func newTestHandler(t *testing.T, deps map[string]Pinger) (http.Handler, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	tokens := fakeTokens{
		"learner": {UserID: uuid.New()},
		"admin":   {UserID: uuid.New(), IsAdmin: true},
	}
	h := Handlers{Contact: contact.NewHTTPHandlers(okSender{}, validation.New(), zerolog.Nop())}
	return NewHandler(Options{
		Tokens:     tokens,
		Metrics:    metrics.New(reg),
		Gatherer:   reg,
		Dependency: deps,
	}, h, zerolog.Nop()), reg
}

func serve(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndReadiness(t *testing.T) {
	h, _ := newTestHandler(t, map[string]Pinger{
		"postgres": func(context.Context) error { return nil },
	})
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/readyz", "", "").Code)

	down, _ := newTestHandler(t, map[string]Pinger{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	assert.Equal(t, http.StatusBadGateway, serve(down, http.MethodGet, "/readyz", "", "").Code)
}

func TestPingDependenciesLogsFailingDependency(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.IntoContext(context.Background(), zerolog.New(&buf))

	err := pingDependencies(ctx, map[string]Pinger{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	assert.EqualError(t, err, "connection refused")
	assert.Contains(t, buf.String(), `"dependency":"redis"`)
	assert.Contains(t, buf.String(), "dependency unavailable")

	assert.NoError(t, pingDependencies(context.Background(), nil))
}

func TestAccessControl(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rec := serve(h, http.MethodGet, "/v1/quizzes", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authentication_required")

	rec = serve(h, http.MethodGet, "/v1/quizzes", "forged", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_token")

	rec = serve(h, http.MethodGet, "/v1/admin/dashboard", "learner", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin_required")

	assert.Equal(t, http.StatusMethodNotAllowed, serve(h, http.MethodGet, "/v1/contact", "", "").Code)
}

func TestRequestsAreCountedByRoute(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rec := serve(h, http.MethodPost, "/v1/contact", "", `{"name":"Ada","email":"ada@example.com","message":"hi"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	serve(h, http.MethodGet, "/nope", "", "")

	rec = serve(h, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `cyberguardian_http_requests_total{code="2xx",route="POST /v1/contact"} 1`)
	assert.Contains(t, body, `cyberguardian_http_requests_total{code="4xx",route="unmatched"} 1`)
}
