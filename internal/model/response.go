package model

// Error kinds carried in ErrorResponse.Error
const (
	ErrKindInvalidInput       = "invalid_input"
	ErrKindUpstream           = "upstream_error"
	ErrKindServiceUnavailable = "service_unavailable"
	ErrKindMethodNotAllowed   = "method_not_allowed"
	ErrKindNotFound           = "not_found"
)

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthStatus is the liveness reply body
const HealthStatus = "yes working"

type HealthResponse struct {
	Status string `json:"status"`
}
