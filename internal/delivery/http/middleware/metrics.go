package middleware

import (
	"net/http"
	"time"

	"familycal/internal/metrics"
)

// Metrics records request count and latency per matched route.
func Metrics(collector *metrics.Collector, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := wrap(w)
		next.ServeHTTP(wrapped, r)
		collector.ObserveHTTP(r.Method, routeOf(r), wrapped.status, time.Since(start))
	})
}
