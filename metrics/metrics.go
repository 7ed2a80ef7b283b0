// Package metrics provides Prometheus metrics for the minihttp server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minihttp_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "minihttp_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Pipeline metrics
	pathBlockedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "minihttp_path_blocked_total",
			Help: "Requests rejected by the path filter",
		},
	)

	authChallengesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minihttp_auth_challenges_total",
			Help: "Requests redirected to the login page",
		},
		[]string{"reason"},
	)

	sessionsDestroyedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "minihttp_sessions_destroyed_total",
			Help: "Session cookies cleared because they were invalid or logged out",
		},
	)

	loginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minihttp_login_attempts_total",
			Help: "Total login form submissions",
		},
		[]string{"result"},
	)

	// Directory browser metrics
	listingsRenderedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "minihttp_listings_rendered_total",
			Help: "Directory listing pages rendered",
		},
	)

	listingEntries = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "minihttp_listing_entries",
			Help:    "Number of entries in listed directories",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric. route is the matched
// route pattern, not the raw path, to keep label cardinality bounded.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordPathBlocked records a request rejected by the path filter.
func RecordPathBlocked() {
	pathBlockedTotal.Inc()
}

// RecordAuthChallenge records a redirect to the login page.
func RecordAuthChallenge(reason string) {
	authChallengesTotal.WithLabelValues(reason).Inc()
}

// RecordSessionDestroyed records a cleared session cookie.
func RecordSessionDestroyed() {
	sessionsDestroyedTotal.Inc()
}

// RecordLoginAttempt records a login attempt. result is one of "success",
// "failure" or "rate_limited".
func RecordLoginAttempt(result string) {
	loginAttemptsTotal.WithLabelValues(result).Inc()
}

// RecordListing records a rendered directory listing of totalItems entries.
func RecordListing(totalItems int) {
	listingsRenderedTotal.Inc()
	listingEntries.Observe(float64(totalItems))
}
