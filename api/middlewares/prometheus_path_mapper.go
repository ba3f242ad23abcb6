package middlewares

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
)

// PrometheusPathMapper404Sink labels a request with its route. Unknown
// routes share one label so ids typed into bad URLs never reach the metrics.
func PrometheusPathMapper404Sink(c echo.Context) string {
	if c.Response().Status == http.StatusNotFound {
		return ""
	}
	return c.Path()
}

// PrometheusPathMapperVerbose is PrometheusPathMapper404Sink plus the sorted
// names of the query parameters.
func PrometheusPathMapperVerbose(c echo.Context) string {
	path := PrometheusPathMapper404Sink(c)
	if path == "" {
		return path
	}

	keys := make([]string, 0, len(c.QueryParams()))
	for k := range c.QueryParams() {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sep := "?"
	for _, k := range keys {
		path += sep + k
		sep = "&"
	}
	return path
}
