package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusResponse cuerpo para estados sin error (loading, ok).
type StatusResponse struct {
	Status string `json:"status"`
}
