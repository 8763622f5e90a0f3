// Package resend delivers mail.Message values through the Resend HTTP API.
package resend

import (
	"context"
	"fmt"
	"net/url"

	"github.com/resend/resend-go/v3"

	"github.com/aanand-mishra/leave-mailer/internal/mail"
)

// Config holds Resend provider configuration.
type Config struct {
	APIKey string
	From   string
}

// Sender implements mail.Sender using the Resend API.
type Sender struct {
	client *resend.Client
	config Config
}

// Option customises the underlying client.
type Option func(*resend.Client) error

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(raw string) Option {
	return func(c *resend.Client) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("resend: parse base url: %w", err)
		}
		c.BaseURL = u
		return nil
	}
}

// New creates a new Resend sender.
func New(cfg Config, opts ...Option) (*Sender, error) {
	client := resend.NewClient(cfg.APIKey)
	for _, opt := range opts {
		if err := opt(client); err != nil {
			return nil, err
		}
	}
	return &Sender{client: client, config: cfg}, nil
}

// Send implements mail.Sender. The combined To string is split into the
// individual addresses the API expects.
func (s *Sender) Send(ctx context.Context, msg mail.Message) error {
	from := msg.From
	if from == "" {
		from = s.config.From
	}

	to := msg.Recipients()
	if len(to) == 0 {
		return fmt.Errorf("%w: resend: no recipients", mail.ErrSendFailed)
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      to,
		Subject: msg.Subject,
		Html:    msg.HTML,
	}

	if len(msg.Attachments) > 0 {
		req.Attachments = convertAttachments(msg.Attachments)
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("%w: resend: %w", mail.ErrSendFailed, err)
	}

	return nil
}

func convertAttachments(attachments []mail.Attachment) []*resend.Attachment {
	result := make([]*resend.Attachment, len(attachments))
	for i, a := range attachments {
		result[i] = &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
		}
	}
	return result
}
