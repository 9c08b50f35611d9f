package binding

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// replaysTotal counts mutations replayed onto a counterpart list.
	replaysTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listbind_replays_total",
		Help: "Mutations replayed onto the counterpart list by action and target side",
	}, []string{"action", "target"})

	// violationsTotal counts one-way binding violations.
	violationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listbind_one_way_violations_total",
		Help: "Writes to the non-authoritative list of a one-way binding",
	}, []string{"side"})

	// suppressedTotal counts change notifications ignored as sync echoes.
	suppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "listbind_suppressed_changes_total",
		Help: "Change notifications ignored because a sync was in progress",
	})

	// rebindsTotal counts full counterpart rebuilds.
	rebindsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "listbind_rebinds_total",
		Help: "Full rebuilds of the counterpart list after a list was attached",
	})

	// propertyPropagationsTotal counts property edits forwarded to a
	// counterpart item.
	propertyPropagationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listbind_property_propagations_total",
		Help: "Property changes propagated to a counterpart item by strategy",
	}, []string{"strategy"})

	// boundPairs tracks item pairs holding property subscriptions across all
	// binders in the process.
	boundPairs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "listbind_bound_pairs",
		Help: "Item pairs currently holding property subscriptions",
	})
)
