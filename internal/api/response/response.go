// Package response holds the helpers every handler uses to write JSON
// bodies and structured errors.
package response

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the error envelope returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// RespondJSON writes data as a JSON body with the given status code.
// A nil data writes the status code only.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		// The status line is already on the wire, so an encode failure
		// cannot be reported to the client.
		_ = json.NewEncoder(w).Encode(data)
	}
}

// RespondError writes an ErrorResponse with the given status code. Details
// carries optional context such as field-level validation messages.
func RespondError(w http.ResponseWriter, status int, message string, details any) {
	RespondJSON(w, status, ErrorResponse{
		Error:   message,
		Details: details,
	})
}
