// Package mqttmetrics exposes Prometheus counters for a
// github.com/gonzalop/mqttv5/mqtt PollClient, wired in by passing
// Collector.Observe as (or wrapping) the mqtt.Handler given to Run.
package mqttmetrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gonzalop/mqttv5/clientstate"
)

// Collector holds the Prometheus metrics for one or more PollClients,
// labeled by the clientID given at construction.
type Collector struct {
	publishesReceived prometheus.Counter
	pubacksSent       prometheus.Counter
	subscriptionsLow  prometheus.Counter
	noSubscription    prometheus.Counter
	disconnects       prometheus.Counter
}

// NewCollector builds a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer, clientID string) (*Collector, error) {
	labels := prometheus.Labels{"client_id": clientID}
	c := &Collector{
		publishesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "mqttv5",
			Name:        "publishes_received_total",
			Help:        "Number of PUBLISH packets received from the broker.",
			ConstLabels: labels,
		}),
		pubacksSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "mqttv5",
			Name:        "pubacks_sent_total",
			Help:        "Number of PUBACK packets sent in response to a QoS 1 PUBLISH.",
			ConstLabels: labels,
		}),
		subscriptionsLow: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "mqttv5",
			Name:        "subscriptions_granted_below_requested_total",
			Help:        "Number of SUBACKs granting a lower QoS than requested.",
			ConstLabels: labels,
		}),
		noSubscription: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "mqttv5",
			Name:        "unsubscribes_with_no_matching_subscription_total",
			Help:        "Number of UNSUBACKs reporting no matching subscription existed.",
			ConstLabels: labels,
		}),
		disconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "mqttv5",
			Name:        "broker_disconnects_total",
			Help:        "Number of DISCONNECT packets received from the broker.",
			ConstLabels: labels,
		}),
	}
	for _, metric := range []prometheus.Collector{
		c.publishesReceived, c.pubacksSent, c.subscriptionsLow, c.noSubscription, c.disconnects,
	} {
		if err := reg.Register(metric); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Observe updates the collector's metrics from one ReceiveEvent and
// returns nil so it can be used directly as (or chained into) an
// mqtt.Handler.
func (c *Collector) Observe(_ context.Context, event *clientstate.ReceiveEvent) error {
	switch event.Kind {
	case clientstate.EventPublish:
		c.publishesReceived.Inc()
	case clientstate.EventPublishAndPuback:
		c.publishesReceived.Inc()
		c.pubacksSent.Inc()
	case clientstate.EventSubscriptionGrantedBelowMaximumQoS:
		c.subscriptionsLow.Inc()
	case clientstate.EventNoSubscriptionExisted:
		c.noSubscription.Inc()
	case clientstate.EventDisconnect:
		c.disconnects.Inc()
	}
	return nil
}
