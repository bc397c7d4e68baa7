// Package metrics provides the prometheus collectors for the engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// namespace groups all engine metrics under one prefix.
const namespace = "engine"

// Collectors for the engine. These are registered with the default registry
// and exposed on the debug mux.
var (
	Requests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total number of http requests handled.",
	})

	Errors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "errors_total",
		Help:      "Total number of requests that resulted in an error.",
	})

	Panics = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "panics_total",
		Help:      "Total number of recovered handler panics.",
	})

	PredictionsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_accepted_total",
		Help:      "Total number of predictions accepted into the ledger.",
	})

	PredictionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_rejected_total",
		Help:      "Total number of predictions rejected, by reason.",
	}, []string{"reason"})

	RoundsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rounds_settled_total",
		Help:      "Total number of rounds settled.",
	})

	RoundsVoided = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rounds_voided_total",
		Help:      "Total number of rounds voided by the lock timeout.",
	})

	ObservationsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "observations_discarded_total",
		Help:      "Total number of stale or duplicate feed observations discarded.",
	})

	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connected_clients",
		Help:      "Number of websocket clients currently registered for events.",
	})
)

// Handler returns the http handler serving the prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
