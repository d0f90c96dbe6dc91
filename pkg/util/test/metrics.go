package test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func GetCounterValue(metric prometheus.Counter) (float64, error) {
	var m = &dto.Metric{}
	err := metric.Write(m)
	if err != nil {
		return 0, err
	}
	return m.Counter.GetValue(), nil
}

// CounterDelta returns a func reporting how much the counter has grown since
// CounterDelta was called. Counters are process wide, so only the delta is
// meaningful in tests.
func CounterDelta(t testing.TB, metric prometheus.Counter) func() float64 {
	t.Helper()

	start, err := GetCounterValue(metric)
	require.NoError(t, err)
	return func() float64 {
		now, err := GetCounterValue(metric)
		require.NoError(t, err)
		return now - start
	}
}
