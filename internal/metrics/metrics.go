// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bookstore"

var (
	// WorkflowOutcomes counts create-order workflow terminal states.
	WorkflowOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_workflow_total",
		Help:      "Create-order workflow executions by terminal state.",
	}, []string{"outcome"})

	// WorkflowDuration observes create-order workflow latency.
	WorkflowDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "order_workflow_duration_seconds",
		Help:      "Create-order workflow duration.",
		Buckets:   prometheus.DefBuckets,
	})

	// NotifyPublished counts events handed to the fan-out hub.
	NotifyPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notify_published_total",
		Help:      "Events published to the notification hub.",
	}, []string{"kind"})

	// NotifyDropped counts per-subscriber deliveries dropped on a full buffer.
	NotifyDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notify_dropped_total",
		Help:      "Event deliveries dropped because a subscriber buffer was full.",
	}, []string{"kind"})

	// NotifySubscribers is the number of live subscribers.
	NotifySubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notify_subscribers",
		Help:      "Currently connected notification subscribers.",
	})

	// RelayMessages counts broker relay and outbox results.
	RelayMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "relay_messages_total",
		Help:      "Broker relay publishes by result.",
	}, []string{"result"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
