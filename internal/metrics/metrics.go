package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics counts reward engine activity for the /metrics endpoint.
type EngineMetrics struct {
	GrantsCreated      prometheus.Counter
	GrantsMatured      prometheus.Counter
	GrantsCancelled    prometheus.Counter
	CapRejections      prometheus.Counter
	ChangesProposed    prometheus.Counter
	ChangesImplemented prometheus.Counter
}

var (
	engineOnce     sync.Once
	engineRegistry *EngineMetrics
)

// Engine returns the lazily-initialised engine metrics registered on the
// default Prometheus registry.
func Engine() *EngineMetrics {
	engineOnce.Do(func() {
		engineRegistry = &EngineMetrics{
			GrantsCreated: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "rewardengine",
				Subsystem: "vesting",
				Name:      "grants_created_total",
				Help:      "Reward grants created in the vesting state.",
			}),
			GrantsMatured: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "rewardengine",
				Subsystem: "vesting",
				Name:      "grants_matured_total",
				Help:      "Reward grants matured to vested by the sweep.",
			}),
			GrantsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "rewardengine",
				Subsystem: "vesting",
				Name:      "grants_cancelled_total",
				Help:      "Reward grants cancelled inside the vesting window.",
			}),
			CapRejections: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "rewardengine",
				Subsystem: "cap",
				Name:      "rejections_total",
				Help:      "Distributions rejected by the monthly points cap.",
			}),
			ChangesProposed: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "rewardengine",
				Subsystem: "governance",
				Name:      "changes_proposed_total",
				Help:      "Loyalty change requests routed to DAO governance.",
			}),
			ChangesImplemented: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "rewardengine",
				Subsystem: "governance",
				Name:      "changes_implemented_total",
				Help:      "Approved loyalty changes applied to the parameter store.",
			}),
		}
		prometheus.MustRegister(
			engineRegistry.GrantsCreated,
			engineRegistry.GrantsMatured,
			engineRegistry.GrantsCancelled,
			engineRegistry.CapRejections,
			engineRegistry.ChangesProposed,
			engineRegistry.ChangesImplemented,
		)
	})
	return engineRegistry
}
