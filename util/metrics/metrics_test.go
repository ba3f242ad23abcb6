package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterPrometheusMetrics(t *testing.T) {
	RegisterPrometheusMetrics()
	// registering again is harmless
	RegisterPrometheusMetrics()

	AlreadyStoredCounter.WithLabelValues("assets").Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	gathered := make(map[string]bool)
	for _, family := range families {
		gathered[family.GetName()] = true
	}
	for _, name := range AllMetricNames {
		assert.True(t, gathered["ledgerdb_"+name], "metric %s is not registered", name)
	}
}
