package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fakhrymubarak/weather-relay/internal/metrics"
	"github.com/fakhrymubarak/weather-relay/internal/model"
	"github.com/fakhrymubarak/weather-relay/internal/repository"
)

// WeatherServiceInterface is what the HTTP handler depends on.
type WeatherServiceInterface interface {
	GetWeather(ctx context.Context, city string) (*model.WeatherReading, error)
}

// WeatherService passes lookups through to the repository, logging and
// counting each provider call. Results and errors are returned untouched.
type WeatherService struct {
	WeatherRepo repository.WeatherRepository
	logger      *zap.SugaredLogger
	metrics     *metrics.Metrics
}

// NewWeatherService wires a service. A nil logger discards output and nil metrics records nothing.
func NewWeatherService(repo repository.WeatherRepository, logger *zap.SugaredLogger, m *metrics.Metrics) *WeatherService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &WeatherService{
		WeatherRepo: repo,
		logger:      logger,
		metrics:     m,
	}
}

func (s *WeatherService) GetWeather(ctx context.Context, city string) (*model.WeatherReading, error) {
	start := time.Now()
	reading, err := s.WeatherRepo.GetWeather(ctx, city)
	elapsed := time.Since(start)

	outcome := Outcome(err)
	if s.metrics != nil {
		s.metrics.ObserveUpstream(outcome, elapsed)
	}

	if err != nil {
		s.logger.Warnw("weather lookup failed",
			"city", city,
			"outcome", outcome,
			"duration", elapsed,
			"error", err,
		)
		return nil, err
	}

	s.logger.Debugw("weather lookup succeeded",
		"city", city,
		"resolved_city", reading.City,
		"duration", elapsed,
	)
	return reading, nil
}

// Outcome classifies a repository result for metrics and logs.
// Unrecognised errors count as transport failures.
func Outcome(err error) string {
	var statusErr *repository.HTTPStatusError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &statusErr):
		return metrics.OutcomeHTTPError
	case errors.Is(err, repository.ErrMalformedPayload):
		return metrics.OutcomeMalformedPayload
	default:
		return metrics.OutcomeTransportError
	}
}
