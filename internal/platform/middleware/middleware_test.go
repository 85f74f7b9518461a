package middleware_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"caseseal/internal/platform/middleware"
)

type MiddlewareSuite struct {
	suite.Suite
}

func TestMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareSuite))
}

func noopHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *MiddlewareSuite) TestRequestIDGenerated() {
	var ctxID string
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = middleware.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	headerID := rec.Header().Get("X-Request-ID")
	s.Equal(headerID, ctxID)
	_, err := uuid.Parse(headerID)
	s.NoError(err)
}

func (s *MiddlewareSuite) TestRequestIDKeepsValidClientID() {
	clientID := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", clientID)
	rec := httptest.NewRecorder()

	middleware.RequestID(noopHandler()).ServeHTTP(rec, req)

	s.Equal(clientID, rec.Header().Get("X-Request-ID"))
}

func (s *MiddlewareSuite) TestRequestIDReplacesArbitraryClientID() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "owned-by-attacker\nfake log line")
	rec := httptest.NewRecorder()

	middleware.RequestID(noopHandler()).ServeHTTP(rec, req)

	headerID := rec.Header().Get("X-Request-ID")
	s.NotEqual("owned-by-attacker\nfake log line", headerID)
	_, err := uuid.Parse(headerID)
	s.NoError(err)
}

func (s *MiddlewareSuite) TestRecoveryTurnsPanicInto500() {
	handler := middleware.Recovery(slog.New(slog.DiscardHandler))(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Contains(rec.Body.String(), `"error":"internal"`)
}

func (s *MiddlewareSuite) TestLoggerPassesResponseThrough() {
	handler := middleware.Logger(slog.New(slog.DiscardHandler))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			w.Write([]byte("short and stout")) //nolint:errcheck
		}),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	s.Equal(http.StatusTeapot, rec.Code)
	s.Equal("short and stout", rec.Body.String())
}

func (s *MiddlewareSuite) TestContentTypeJSON() {
	for _, tc := range []struct {
		contentType string
		want        int
	}{
		{"application/json", http.StatusNoContent},
		{"application/json; charset=utf-8", http.StatusNoContent},
		{"", http.StatusNoContent},
		{"text/plain", http.StatusUnsupportedMediaType},
		{"application/xml", http.StatusUnsupportedMediaType},
	} {
		s.Run(tc.contentType, func() {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			}
			rec := httptest.NewRecorder()

			middleware.ContentTypeJSON(noopHandler()).ServeHTTP(rec, req)

			s.Equal(tc.want, rec.Code)
		})
	}
}

func (s *MiddlewareSuite) TestContentTypeJSONIgnoresReads() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()

	middleware.ContentTypeJSON(noopHandler()).ServeHTTP(rec, req)

	s.Equal(http.StatusNoContent, rec.Code)
}
