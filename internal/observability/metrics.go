package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	webhookRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayforpay_webhook_requests_total",
			Help: "Total number of webhook HTTP requests.",
		},
		[]string{"method", "path", "code"},
	)
	webhookRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wayforpay_webhook_request_duration_seconds",
			Help:    "Duration of webhook HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// NewMetricsMiddleware collects per-request Prometheus metrics.
func NewMetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				duration := time.Since(start)
				path := r.URL.Path

				webhookRequestDuration.WithLabelValues(r.Method, path).Observe(duration.Seconds())
				webhookRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
