package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	loginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "it_incidents",
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	lockouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "it_incidents",
			Subsystem: "auth",
			Name:      "lockouts_total",
			Help:      "Temporary lockouts engaged after repeated failed logins.",
		},
	)

	tokensIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "it_incidents",
			Subsystem: "auth",
			Name:      "tokens_issued_total",
			Help:      "Signed tokens issued by kind.",
		},
		[]string{"kind"},
	)

	refreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "it_incidents",
			Subsystem: "auth",
			Name:      "refresh_total",
			Help:      "Refresh token exchanges by outcome.",
		},
		[]string{"outcome"},
	)

	signups = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "it_incidents",
			Subsystem: "auth",
			Name:      "signups_total",
			Help:      "Accounts created through signup.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "it_incidents",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "it_incidents",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)
)

func init() {
	Registry.MustRegister(
		loginAttempts,
		lockouts,
		tokensIssued,
		refreshes,
		signups,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordLogin counts one authenticate call by outcome.
func RecordLogin(outcome string) {
	loginAttempts.WithLabelValues(outcome).Inc()
}

// RecordLockout counts one engaged temporary lockout.
func RecordLockout() {
	lockouts.Inc()
}

// RecordTokenIssued counts one signed token.
func RecordTokenIssued(kind string) {
	tokensIssued.WithLabelValues(kind).Inc()
}

// RecordRefresh counts one refresh exchange by outcome.
func RecordRefresh(outcome string) {
	refreshes.WithLabelValues(outcome).Inc()
}

// RecordSignup counts one created account.
func RecordSignup() {
	signups.Inc()
}

// RecordHTTPRequest records one handled request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
