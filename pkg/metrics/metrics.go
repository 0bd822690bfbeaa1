package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the service's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	cartMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodcart",
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Cart state transitions by action.",
		},
		[]string{"action"},
	)

	persistFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "foodcart",
			Subsystem: "cart",
			Name:      "persist_failures_total",
			Help:      "Cart snapshots that could not be written.",
		},
	)

	activeCarts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "foodcart",
			Subsystem: "cart",
			Name:      "active_actors",
			Help:      "Cart actors currently held in memory.",
		},
	)

	checkouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodcart",
			Subsystem: "checkout",
			Name:      "attempts_total",
			Help:      "Checkout attempts by outcome.",
		},
		[]string{"outcome"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodcart",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "foodcart",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route"},
	)
)

func init() {
	Registry.MustRegister(
		cartMutations,
		persistFailures,
		activeCarts,
		checkouts,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordCartMutation(action string) {
	cartMutations.WithLabelValues(action).Inc()
}

func RecordPersistFailure() {
	persistFailures.Inc()
}

func CartActorStarted() {
	activeCarts.Inc()
}

func CartActorStopped() {
	activeCarts.Dec()
}

// RecordCheckout counts one checkout attempt. outcome is "placed" or the reason it
// was refused.
func RecordCheckout(outcome string) {
	checkouts.WithLabelValues(outcome).Inc()
}

// GinMiddleware records request counts and latency by matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
