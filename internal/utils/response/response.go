// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every leave endpoint answers in one of two shapes:
//
//	{ "success": "Leave application submitted successfully and email sent!" }
//	{ "error": "Missing required fields." }
//
// Server-side failures additionally carry the underlying error text:
//
//	{ "error": "Failed to process request", "details": "dial tcp: ..." }
package response

import (
	"encoding/json"
	"net/http"
)

// Messages shared by handlers and middleware.
const (
	MsgMissingFields   = "Missing required fields."
	MsgFileTooLarge    = "File is too large. Maximum size is 5MB."
	MsgUnexpectedField = "Unexpected field"
	MsgProcessFailed   = "Failed to process request"
	MsgUnhandled       = "Something went wrong!"
)

// Response is the envelope for error cases.
type Response struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Success is the envelope for a delivered notification.
type Success struct {
	Success string `json:"success"`
}

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// ClientError is a 400-class message shown to the submitter as is.
func ClientError(msg string) Response {
	return Response{Error: msg}
}

// GeneralError wraps a server-side failure: a fixed headline plus the
// underlying error text.
func GeneralError(err error) Response {
	return Response{
		Error:   MsgProcessFailed,
		Details: err.Error(),
	}
}

// Unhandled is returned when a handler panicked.
func Unhandled() Response {
	return Response{Error: MsgUnhandled}
}
