package dto

// DateLayout calendar dates travel as YYYY-MM-DD.
const DateLayout = "2006-01-02"

// ErrorResponse HTTP error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// MessageResponse informational result without payload.
type MessageResponse struct {
	Message string `json:"message"`
}
