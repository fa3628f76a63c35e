package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.WeatherCache.WithLabelValues("hit").Inc()
	a.StaleCompletions.Inc()

	assert.InDelta(t, 1, counterValue(t, a.WeatherCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 0, counterValue(t, b.WeatherCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, counterValue(t, a.StaleCompletions), 0)
}
