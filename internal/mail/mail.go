// Package mail defines the outbound message and the send capability the
// notification composer depends on. Concrete providers live in the smtp
// and resend subpackages; the composer never imports them.
package mail

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// ErrSendFailed wraps every provider failure so callers can tell transport
// errors from validation errors with errors.Is.
var ErrSendFailed = errors.New("failed to send email")

// Message is a fully composed email.
//
// To is a single combined recipient string ("a@x.edu, b@x.edu"), exactly as
// it appears in the To header. Per-recipient delivery is not tracked.
type Message struct {
	From        string
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Attachment is a file carried alongside the message body.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Recipients splits the combined To string into individual addresses,
// dropping blanks.
func (m Message) Recipients() []string {
	parts := strings.Split(m.To, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Sender delivers a message. Implementations must be safe for concurrent
// use; Send returns once the provider accepted or rejected the message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a plain function to the Sender interface.
type SenderFunc func(ctx context.Context, msg Message) error

// Send calls f(ctx, msg).
func (f SenderFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// LogSender writes messages to the logger instead of delivering them.
// Useful for local development without mail credentials.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return errors.Join(ErrSendFailed, err)
	}

	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Filename)
	}

	s.log.InfoContext(ctx, "email not delivered (log provider)",
		slog.String("from", msg.From),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("html_bytes", len(msg.HTML)),
		slog.Any("attachments", names),
	)
	return nil
}
