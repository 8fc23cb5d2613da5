package handler

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/fakhrymubarak/weather-relay/internal/model"
	"github.com/fakhrymubarak/weather-relay/internal/repository"
	"github.com/fakhrymubarak/weather-relay/internal/service"
)

const (
	MsgMissingCity        = "Missing 'city' query parameter"
	MsgServiceUnavailable = "Error communicating with weather service"
)

type WeatherHandler struct {
	WeatherService service.WeatherServiceInterface
	logger         *zap.SugaredLogger
}

func NewWeatherHandler(svc service.WeatherServiceInterface, logger *zap.SugaredLogger) *WeatherHandler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &WeatherHandler{
		WeatherService: svc,
		logger:         logger,
	}
}

func (h *WeatherHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	WriteJSON(w, statusCode, data, h.logger)
}

// HandleWeather serves GET /api/weather?city=<name>.
func (h *WeatherHandler) HandleWeather(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, r)
		return
	}

	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		h.writeJSONResponse(w, http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrKindInvalidInput,
			Message: MsgMissingCity,
		})
		return
	}

	reading, err := h.WeatherService.GetWeather(r.Context(), city)
	if err != nil {
		status, body := errorResponse(err)
		h.writeJSONResponse(w, status, body)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, reading)
}

// errorResponse maps a lookup failure to a status and body. A provider
// rejection is forwarded as-is unless its status cannot carry a body, which
// becomes a 502; everything else is a 503.
func errorResponse(err error) (int, model.ErrorResponse) {
	var statusErr *repository.HTTPStatusError
	if errors.As(err, &statusErr) {
		status := statusErr.StatusCode
		if !bodyAllowed(status) {
			status = http.StatusBadGateway
		}
		return status, model.ErrorResponse{
			Error:   model.ErrKindUpstream,
			Message: statusErr.Message,
		}
	}
	return http.StatusServiceUnavailable, model.ErrorResponse{
		Error:   model.ErrKindServiceUnavailable,
		Message: MsgServiceUnavailable,
	}
}

func bodyAllowed(status int) bool {
	return status >= 200 && status != http.StatusNoContent && status != http.StatusNotModified
}
