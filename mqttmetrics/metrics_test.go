package mqttmetrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/gonzalop/mqttv5/clientstate"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestCollectorObserveCountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg, "sensor-1")
	require.NoError(t, err)

	require.NoError(t, c.Observe(context.Background(), &clientstate.ReceiveEvent{Kind: clientstate.EventPublishAndPuback}))
	require.NoError(t, c.Observe(context.Background(), &clientstate.ReceiveEvent{Kind: clientstate.EventSubscriptionGrantedBelowMaximumQoS}))

	require.Equal(t, float64(1), counterValue(t, c.publishesReceived))
	require.Equal(t, float64(1), counterValue(t, c.pubacksSent))
	require.Equal(t, float64(1), counterValue(t, c.subscriptionsLow))
}
