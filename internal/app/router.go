package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fakhrymubarak/weather-relay/internal/handler"
	"github.com/fakhrymubarak/weather-relay/internal/metrics"
	"github.com/fakhrymubarak/weather-relay/internal/middleware"
)

const (
	WeatherRoute = "/api/weather"
	HealthRoute  = "/working"
	MetricsRoute = "/metrics"
)

// NewRouter registers the relay's routes and wraps them in the middleware chain.
func NewRouter(weather *handler.WeatherHandler, m *metrics.Metrics, logger *zap.SugaredLogger, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc(WeatherRoute, weather.HandleWeather).Methods(http.MethodGet)
	r.HandleFunc(HealthRoute, handler.HandleHealth).Methods(http.MethodGet)
	r.Handle(MetricsRoute, m.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(handler.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handler.MethodNotAllowed)

	chain := []func(http.Handler) http.Handler{
		middleware.Recovery(logger),
		middleware.CORS(allowedOrigins),
		middleware.RequestID,
		middleware.Logging(logger),
		middleware.Instrument(m, routeTemplate(r)),
	}

	var h http.Handler = r
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

// routeTemplate resolves a request to the path template it will be served by.
func routeTemplate(r *mux.Router) func(*http.Request) string {
	return func(req *http.Request) string {
		var match mux.RouteMatch
		if !r.Match(req, &match) || match.Route == nil {
			return ""
		}
		tpl, err := match.Route.GetPathTemplate()
		if err != nil {
			return ""
		}
		return tpl
	}
}
