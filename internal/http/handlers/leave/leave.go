// Package leave contains the HTTP handler shared by the three leave
// endpoints.
//
// Every route follows the same sequence:
//
//	Received → Parsed → Validated → Composed → Dispatched → Responded
//
// with an early 400 from Parsed or Validated and a 500 from Composed or
// Dispatched. Only the request kind differs between routes, so one handler
// factory serves them all:
//
//	router.HandleFunc("POST /send-email", h.Submit(types.KindRegular))
package leave

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/leave-mailer/internal/http/ingress"
	"github.com/aanand-mishra/leave-mailer/internal/http/middleware"
	"github.com/aanand-mishra/leave-mailer/internal/mail"
	"github.com/aanand-mishra/leave-mailer/internal/notify"
	"github.com/aanand-mishra/leave-mailer/internal/types"
	"github.com/aanand-mishra/leave-mailer/internal/utils/response"
)

// Handler holds the per-process collaborators. It carries no per-request
// state and is safe for concurrent use.
type Handler struct {
	parser   *ingress.Parser
	composer *notify.Composer
	sender   mail.Sender
	timeout  time.Duration
	log      *slog.Logger
}

// New builds a Handler. timeout bounds one dispatch; zero means no bound.
func New(parser *ingress.Parser, composer *notify.Composer, sender mail.Sender, timeout time.Duration, log *slog.Logger) *Handler {
	return &Handler{
		parser:   parser,
		composer: composer,
		sender:   sender,
		timeout:  timeout,
		log:      log,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Submit handles POST /send-email, /send-medical-email and /leave-status.
//
// Success response (200 OK):
//
//	{ "success": "Leave application submitted successfully and email sent!" }
//
// Error responses:
//
//	400 Bad Request  — missing fields, file too large, malformed body
//	500 Internal     — the mail transport failed
//
// ─────────────────────────────────────────────────────────────────────────────
func (h *Handler) Submit(kind types.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := h.log.With(
			slog.String("kind", string(kind)),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		log.Info("processing leave submission")

		// ── Step 1: Parse the body ────────────────────────────────────
		form, err := h.parser.Parse(w, r)
		if err != nil {
			log.Warn("rejected submission", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusBadRequest, parseError(err))
			return
		}

		// ── Step 2: Validate required fields ──────────────────────────
		req, err := types.Decode(kind, form.Fields)
		if errors.Is(err, types.ErrMissingFields) {
			log.Warn("rejected submission", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusBadRequest,
				response.ClientError(response.MsgMissingFields))
			return
		}
		if err != nil {
			log.Error("cannot decode submission", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		// ── Step 3: Compose the email ─────────────────────────────────
		msg, err := h.composer.Compose(req, form.Attachment)
		if err != nil {
			log.Error("cannot compose email", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		// ── Step 4: Dispatch ──────────────────────────────────────────
		// A client hanging up does not abort a send already under way.
		ctx := context.WithoutCancel(r.Context())
		if h.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.timeout)
			defer cancel()
		}

		if err := h.sender.Send(ctx, msg); err != nil {
			log.Error("failed to send email",
				slog.String("subject", msg.Subject),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		log.Info("email sent",
			slog.String("subject", msg.Subject),
			slog.Int("attachments", len(msg.Attachments)))

		response.WriteJSON(w, http.StatusOK, response.Success{Success: notify.SuccessMessage(req)})
	}
}

// parseError maps an ingress failure to its client-facing message.
func parseError(err error) response.Response {
	switch {
	case errors.Is(err, ingress.ErrFileTooLarge):
		return response.ClientError(response.MsgFileTooLarge)
	case errors.Is(err, ingress.ErrUnexpectedFile):
		return response.ClientError(response.MsgUnexpectedField)
	default:
		return response.ClientError(err.Error())
	}
}

// Root handles GET / as a liveness probe.
func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Server is running"))
	}
}
