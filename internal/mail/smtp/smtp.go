// Package smtp delivers mail.Message values over SMTP with STARTTLS (or
// implicit TLS on port 465) and PLAIN auth, the way webmail providers such
// as Gmail expect.
package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	netmail "net/mail"
	netsmtp "net/smtp"
	"time"

	"github.com/aanand-mishra/leave-mailer/internal/mail"
)

// Config for sending via Gmail or any other SMTP relay.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string // e.g. "leave.bot@gmail.com" or "Leave Desk <desk@x.edu>"
}

// Sender implements mail.Sender on top of net/smtp.
type Sender struct {
	cfg    Config
	dialer *net.Dialer
	now    func() time.Time
}

func New(cfg Config) *Sender {
	return &Sender{
		cfg:    cfg,
		dialer: &net.Dialer{Timeout: 15 * time.Second},
		now:    time.Now,
	}
}

// Send opens one connection per message. The context bounds the whole
// exchange: dial, handshake, and DATA.
func (s *Sender) Send(ctx context.Context, msg mail.Message) error {
	if msg.From == "" {
		msg.From = s.cfg.From
	}

	rcpts := msg.Recipients()
	if len(rcpts) == 0 {
		return fmt.Errorf("%w: smtp: no recipients", mail.ErrSendFailed)
	}

	raw, err := BuildMessage(msg, s.now())
	if err != nil {
		return fmt.Errorf("%w: smtp: %w", mail.ErrSendFailed, err)
	}

	if err := s.deliver(ctx, envelopeAddress(msg.From), rcpts, raw); err != nil {
		return fmt.Errorf("%w: smtp: %w", mail.ErrSendFailed, err)
	}
	return nil
}

func (s *Sender) deliver(ctx context.Context, from string, rcpts []string, raw []byte) error {
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)

	conn, err := s.dial(ctx, addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, withCtx(ctx, err))
	}

	// Unblock any pending read or write once ctx is done.
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	c, err := netsmtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("handshake: %w", withCtx(ctx, err))
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(s.tlsConfig()); err != nil {
			return fmt.Errorf("starttls: %w", withCtx(ctx, err))
		}
	}

	if s.cfg.Username != "" {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("server does not support AUTH")
		}
		auth := netsmtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("auth: %w", withCtx(ctx, err))
		}
	}

	if err := c.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", withCtx(ctx, err))
	}
	for _, rcpt := range rcpts {
		if err := c.Rcpt(envelopeAddress(rcpt)); err != nil {
			return fmt.Errorf("rcpt %s: %w", rcpt, withCtx(ctx, err))
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", withCtx(ctx, err))
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("write body: %w", withCtx(ctx, err))
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("end data: %w", withCtx(ctx, err))
	}

	return c.Quit()
}

func (s *Sender) dial(ctx context.Context, addr string) (net.Conn, error) {
	if s.cfg.Port == "465" {
		d := &tls.Dialer{NetDialer: s.dialer, Config: s.tlsConfig()}
		return d.DialContext(ctx, "tcp", addr)
	}
	return s.dialer.DialContext(ctx, "tcp", addr)
}

func (s *Sender) tlsConfig() *tls.Config {
	return &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
}

// withCtx prefers the context error when the connection was torn down by
// cancellation, so callers see "context deadline exceeded" rather than an
// opaque i/o timeout.
func withCtx(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Join(ctxErr, err)
	}
	return err
}

// envelopeAddress strips a display name: "Desk <d@x.edu>" → "d@x.edu".
// Unparseable input is passed through and left for the server to reject.
func envelopeAddress(s string) string {
	a, err := netmail.ParseAddress(s)
	if err != nil {
		return s
	}
	return a.Address
}
