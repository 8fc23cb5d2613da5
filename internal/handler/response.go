package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/fakhrymubarak/weather-relay/internal/model"
)

// MethodNotAllowed answers any non-GET request.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", http.MethodGet)
	WriteJSON(w, http.StatusMethodNotAllowed, model.ErrorResponse{
		Error:   model.ErrKindMethodNotAllowed,
		Message: "Method not allowed",
	}, nil)
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusNotFound, model.ErrorResponse{
		Error:   model.ErrKindNotFound,
		Message: "Not found",
	}, nil)
}

func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}, logger *zap.SugaredLogger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil && logger != nil {
		logger.Errorw("could not encode json", "error", err)
	}
}
