package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OrderMutations counts accepted admin mutations by operation.
	OrderMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petalpost",
		Subsystem: "orders",
		Name:      "mutations_total",
		Help:      "Accepted order mutations by operation.",
	}, []string{"operation"})

	// PaymentConfirmations counts PENDING/FAILED -> PAID edges by origin.
	PaymentConfirmations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petalpost",
		Subsystem: "payments",
		Name:      "confirmations_total",
		Help:      "Payment confirmations by origin (manual or webhook).",
	}, []string{"origin"})

	// AuditWriteFailures counts swallowed audit log write errors.
	AuditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "petalpost",
		Subsystem: "audit",
		Name:      "write_failures_total",
		Help:      "Audit log writes that failed and were dropped.",
	})
)

// Handler exposes the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
