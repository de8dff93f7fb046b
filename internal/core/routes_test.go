package core

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadsapi/internal/config"
	"leadsapi/internal/types"
)

func TestMountRoutesServesHealthWithoutAuth(t *testing.T) {
	srv := newTestServer(t, &mockSource{}, nil)
	srv.Config = &config.Config{Build: config.BuildInfo{Version: "test", Commit: "abc"}}
	srv.MountRoutes()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","version":"test","commit":"abc"}`, rec.Body.String())
}

func TestMountRoutesRunsRegistrars(t *testing.T) {
	srv := newTestServer(t, &mockSource{}, nil)
	srv.RouteRegistrars = append(srv.RouteRegistrars, func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})
	srv.MountRoutes()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequestIDMiddlewareGeneratesID(t *testing.T) {
	var inContext string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inContext = types.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, inContext)
	assert.Equal(t, inContext, rec.Header().Get("X-Request-Id"))
}

func TestRequestIDMiddlewarePropagatesIncomingID(t *testing.T) {
	var inContext string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inContext = types.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "upstream-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "upstream-id", inContext)
	assert.Equal(t, "upstream-id", rec.Header().Get("X-Request-Id"))
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, &mockSource{}, nil)

	rec := httptest.NewRecorder()
	srv.SecurityHeadersMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRecovererConvertsPanicTo500(t *testing.T) {
	srv := newTestServer(t, &mockSource{}, nil)

	handler := srv.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, string(types.ErrCodeInternalUnexpected), errorCode(t, rec.Body))
}

func TestNewServerValidation(t *testing.T) {
	_, err := NewServer(nil, &mockSource{}, nil, nil)
	require.Error(t, err)

	_, err = NewServer(&config.Config{}, nil, nil, nil)
	require.Error(t, err)
}
