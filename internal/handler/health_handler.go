package handler

import (
	"net/http"

	"github.com/fakhrymubarak/weather-relay/internal/model"
)

// HandleHealth serves GET /working. It never touches the provider.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, r)
		return
	}
	WriteJSON(w, http.StatusOK, model.HealthResponse{Status: model.HealthStatus}, nil)
}
