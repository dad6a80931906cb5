package coordinator

import "github.com/prometheus/client_golang/prometheus"

var (
	cartOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_operations_total",
			Help: "Cart operations by backend and outcome",
		},
		[]string{"backend", "operation", "status"},
	)

	cartSyncs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_sync_total",
			Help: "Login cart sync attempts by outcome",
		},
		[]string{"outcome"},
	)

	staleResponsesDiscarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_cart_stale_responses_total",
			Help: "Cart responses discarded because the session changed mid-flight",
		},
	)
)

func init() {
	prometheus.MustRegister(cartOperations, cartSyncs, staleResponsesDiscarded)
}

func recordOperation(backend, operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	cartOperations.WithLabelValues(backend, operation, status).Inc()
}
