package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pennypost_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"operation"})

	// SagaOutcomes counts terminal saga states by operation name.
	SagaOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pennypost_sagas_total",
		Help: "Total number of coordinated operations by terminal status",
	}, []string{"saga", "status"})

	// SagaStepFailures counts forward-step failures by operation and step.
	SagaStepFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pennypost_saga_step_failures_total",
		Help: "Total number of failed saga steps",
	}, []string{"saga", "step"})

	// SagaCompensationRetries counts compensation attempts beyond the first.
	SagaCompensationRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pennypost_saga_compensation_retries_total",
		Help: "Total number of retried compensating actions",
	}, []string{"saga", "step"})

	// LedgerMoves counts penny movements by direction.
	LedgerMoves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pennypost_ledger_moves_total",
		Help: "Total number of ledger operations by kind",
	}, []string{"kind"})
)

// InitMetrics sets up the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the Fiber handler that records HTTP metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
