package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applogger "EconDash/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type stubHandler struct{}

func (stubHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ok", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/boom", func(c echo.Context) error {
		panic("boom")
	})
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestServerRoutesAndMetrics(t *testing.T) {
	s := NewServer(applogger.Nop(), stubHandler{},
		WithHost("127.0.0.1"),
		WithPort(8050),
		WithMetricsPath("/metrics"),
	)
	assert.Equal(t, "127.0.0.1:8050", s.Addr())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `econdash_http_requests_total{method="GET",route="/ok",status="200"}`))
}

func TestServerRecoversPanics(t *testing.T) {
	s := NewServer(applogger.Nop(), stubHandler{})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServerCORS(t *testing.T) {
	s := NewServer(applogger.Nop(), stubHandler{}, WithCORS(true))

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(echo.HeaderOrigin, "http://example.com")
	rec := serve(s, req)
	assert.Equal(t, "http://example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	s = NewServer(applogger.Nop(), stubHandler{})
	rec = serve(s, req)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
