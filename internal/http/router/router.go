// Package router wires the leave endpoints and middleware into one
// http.Handler.
//
// Route table:
//
//	GET  /                    → liveness text
//	POST /send-email          → regular leave to the faculty
//	POST /send-medical-email  → medical leave to faculty, student and parent
//	POST /leave-status        → approval/rejection to student and parent
package router

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/leave-mailer/internal/http/handlers/leave"
	"github.com/aanand-mishra/leave-mailer/internal/http/middleware"
	"github.com/aanand-mishra/leave-mailer/internal/types"
)

// New returns the application handler.
func New(h *leave.Handler, log *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", leave.Root())

	routes := []struct {
		path string
		kind types.Kind
	}{
		{"/send-email", types.KindRegular},
		{"/send-medical-email", types.KindMedical},
		{"/leave-status", types.KindStatusDecision},
	}
	for _, rt := range routes {
		submit := h.Submit(rt.kind)
		// A single trailing slash reaches the same endpoint.
		mux.HandleFunc("POST "+rt.path, submit)
		mux.HandleFunc("POST "+rt.path+"/{$}", submit)
	}

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logger(log),
		middleware.Recover(log),
		middleware.CORS(middleware.DefaultCORSConfig),
	)
}
