package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth(t *testing.T) {
	e := echo.New()
	e.Use(MakeAuth("X-Ledger-API-Token", []string{"secret"}))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{name: "missing", status: http.StatusUnauthorized},
		{name: "wrong", token: "guess", status: http.StatusUnauthorized},
		{name: "accepted", token: "secret", status: http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tc.token != "" {
				req.Header.Set("X-Ledger-API-Token", tc.token)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	e := echo.New()
	e.Use(MakeLogger(logger))
	e.GET("/v1/blocks/:height", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "no block")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/blocks/9", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, "request", entry.Message)
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])
	assert.Equal(t, "/v1/blocks/9", entry.Data["uri"])
}

func TestPrometheusPathMapper(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/v1/assets?search=kayak&limit=3", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/assets")
	c.Response().Status = http.StatusOK

	assert.Equal(t, "/v1/assets", PrometheusPathMapper404Sink(c))
	assert.Equal(t, "/v1/assets?limit&search", PrometheusPathMapperVerbose(c))

	c.Response().Status = http.StatusNotFound
	assert.Equal(t, "", PrometheusPathMapper404Sink(c))
	assert.Equal(t, "", PrometheusPathMapperVerbose(c))
}
