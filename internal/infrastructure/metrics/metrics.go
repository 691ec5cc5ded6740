package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VisibilityTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_visibility_transitions_total",
		Help: "Visibility transitions by target status and outcome.",
	}, []string{"to", "outcome"})

	ReconcileRepairs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_visibility_reconcile_repairs_total",
		Help: "Product list references repaired by the visibility reconciler.",
	})

	EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_event_publish_failures_total",
		Help: "Product events that could not be published after retries.",
	}, []string{"event_type"})
)
