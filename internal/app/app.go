package app

import (
	"context"
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/fakhrymubarak/weather-relay/internal/config"
	"github.com/fakhrymubarak/weather-relay/internal/handler"
	"github.com/fakhrymubarak/weather-relay/internal/metrics"
	"github.com/fakhrymubarak/weather-relay/internal/repository"
	"github.com/fakhrymubarak/weather-relay/internal/service"
)

const metricsNamespace = "weather_relay"

// App ties together config, logger, and metrics for startup/shutdown.
type App struct {
	cfg     *config.Config
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
	handler http.Handler
}

// New wires repository, service, handler and router. httpClient is optional
// and replaces the provider client built from config.
func New(cfg *config.Config, logger *zap.SugaredLogger, httpClient ...repository.HTTPClient) *App {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	m := metrics.New(metricsNamespace)

	weatherRepo := repository.NewWeatherRepository(cfg.Provider, httpClient...)
	weatherService := service.NewWeatherService(weatherRepo, logger, m)
	weatherHandler := handler.NewWeatherHandler(weatherService, logger)

	return &App{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		handler: NewRouter(weatherHandler, m, logger, cfg.CORS.AllowedOrigins),
	}
}

// Handler returns the fully wrapped HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Metrics returns the collectors the relay records into.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

func (a *App) newServer() *http.Server {
	return &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           a.handler,
		ReadHeaderTimeout: a.cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
		IdleTimeout:       a.cfg.Server.IdleTimeout,
	}
}

// Run listens on the configured address until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := a.newServer()

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Infow("weather relay listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received, stopping weather relay")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Errorw("graceful shutdown failed", "error", err)
		return err
	}
	a.logger.Info("shutdown complete")
	return nil
}
