package middleware

import (
	"net/http"

	"github.com/felixge/httpsnoop"

	"github.com/fakhrymubarak/weather-relay/internal/metrics"
)

// UnmatchedRoute labels requests that hit no registered route.
const UnmatchedRoute = "unmatched"

// Instrument records request counts and latencies. routeOf maps a request to
// its route template so label cardinality stays bounded.
func Instrument(m *metrics.Metrics, routeOf func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := UnmatchedRoute
			if routeOf != nil {
				if tpl := routeOf(r); tpl != "" {
					route = tpl
				}
			}
			snoop := httpsnoop.CaptureMetrics(next, w, r)
			m.ObserveHTTP(r.Method, route, snoop.Code, snoop.Duration)
		})
	}
}
