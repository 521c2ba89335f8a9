package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the storefront's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	checkouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "checkout",
			Name:      "orders_total",
			Help:      "Checkout submissions by outcome.",
		},
		[]string{"outcome"},
	)

	checkoutDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "checkout",
			Name:      "saga_duration_seconds",
			Help:      "Duration of the order placement saga.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	vatRecalculations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cart",
			Name:      "vat_recalculations_total",
			Help:      "Cart totals recalculated after a shipping country change.",
		},
		[]string{"country"},
	)

	housekeepingRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Housekeeping job runs.",
		},
		[]string{"job", "success"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		checkouts,
		checkoutDuration,
		vatRecalculations,
		housekeepingRuns,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registered collectors.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler records request counts and latency labelled by chi route
// pattern, so ids in the path do not explode label cardinality.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := routePattern(r)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

// Checkout outcomes.
const (
	OutcomePlaced   = "placed"
	OutcomeReplayed = "replayed"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
)

func RecordCheckout(outcome string, duration time.Duration) {
	checkouts.WithLabelValues(outcome).Inc()
	if duration > 0 {
		checkoutDuration.Observe(duration.Seconds())
	}
}

func RecordVATRecalculation(countryCode string) {
	if countryCode == "" {
		countryCode = "unknown"
	}
	vatRecalculations.WithLabelValues(countryCode).Inc()
}

func RecordHousekeeping(job string, success bool) {
	housekeepingRuns.WithLabelValues(job, strconv.FormatBool(success)).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
