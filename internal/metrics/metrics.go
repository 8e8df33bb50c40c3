package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Auth
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Register and login attempts by outcome",
		},
		[]string{"action", "result"}, // register|login, ok|invalid|conflict|error
	)

	// Resources
	ResourceOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_operations_total",
			Help: "Successful task and category mutations",
		},
		[]string{"resource", "op"},
	)

	// Audit queue
	AuditQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "audit_queue_depth",
			Help: "Audit log writes waiting for a worker",
		},
	)

	initOnce sync.Once
)

// Handler serves the default registry on /metrics.
var Handler = promhttp.Handler

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(AuthAttempts)
		prometheus.MustRegister(ResourceOps)
		prometheus.MustRegister(AuditQueueDepth)
	})
}
