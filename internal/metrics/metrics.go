// Package metrics provides Prometheus metrics for the deskshell server.
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
			Name: "deskshell_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deskshell_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Session metrics
	sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "deskshell_sessions_active",
			Help: "Number of logged in sessions",
		},
	)

	windowsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "deskshell_windows_open",
			Help: "Number of open windows across all sessions",
		},
	)

	trashItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "deskshell_trash_items",
			Help: "Number of trashed entries across all sessions",
		},
	)

	opsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deskshell_ops_total",
			Help: "Total session operations by result",
		},
		[]string{"op", "result"},
	)

	timersDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "deskshell_timers_dropped_total",
			Help: "Timer callbacks dropped because their window closed",
		},
	)

	// Auth metrics
	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deskshell_auth_attempts_total",
			Help: "Total authentication attempts",
		},
		[]string{"result"},
	)

	// Mount metrics
	mountRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "deskshell_mount_refresh_duration_seconds",
			Help:    "Time to re-import a mounted directory",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordOp counts a session operation.
func RecordOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	opsTotal.WithLabelValues(op, result).Inc()
}

func SetSessionsActive(n int) {
	sessionsActive.Set(float64(n))
}

// AddWindows adjusts the open window gauge by delta.
func AddWindows(delta int) {
	windowsOpen.Add(float64(delta))
}

// AddTrashItems adjusts the trash gauge by delta.
func AddTrashItems(delta int) {
	trashItems.Add(float64(delta))
}

func RecordTimerDropped() {
	timersDropped.Inc()
}

// RecordAuthAttempt records an authentication attempt.
func RecordAuthAttempt(success bool) {
	if success {
		authAttemptsTotal.WithLabelValues("success").Inc()
	} else {
		authAttemptsTotal.WithLabelValues("failure").Inc()
	}
}

func RecordMountRefresh(duration time.Duration) {
	mountRefreshDuration.Observe(duration.Seconds())
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency. Requests are labelled with
// their ServeMux pattern to keep label cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPRequest(r.Method, path, rec.status, time.Since(start))
	})
}
