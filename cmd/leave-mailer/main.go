// main is the entry point of the leave mailer.
//
// STARTUP SEQUENCE:
//  1. Load configuration (.env, optional YAML file, environment)
//  2. Initialise the logger
//  3. Build the mail transport selected by MAIL_PROVIDER
//  4. Register all HTTP routes
//  5. Start the HTTP server in a separate goroutine
//  6. Block the main goroutine until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	EMAIL_USER=bot@gmail.com EMAIL_PASS=app-password go run ./cmd/leave-mailer
//
// or with a YAML file:
//
//	go run ./cmd/leave-mailer --config=config/local.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/leave-mailer/internal/config"
	"github.com/aanand-mishra/leave-mailer/internal/http/handlers/leave"
	"github.com/aanand-mishra/leave-mailer/internal/http/ingress"
	"github.com/aanand-mishra/leave-mailer/internal/http/router"
	"github.com/aanand-mishra/leave-mailer/internal/mail"
	"github.com/aanand-mishra/leave-mailer/internal/mail/resend"
	"github.com/aanand-mishra/leave-mailer/internal/mail/smtp"
	"github.com/aanand-mishra/leave-mailer/internal/notify"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting leave-mailer",
		slog.String("env", cfg.Env),
		slog.String("mail_provider", cfg.Provider),
	)

	// ── 3. Mail Transport ─────────────────────────────────────────────────
	sender, err := newSender(cfg, log)
	if err != nil {
		log.Error("failed to initialise mail transport", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// ── 4. Register HTTP Routes ───────────────────────────────────────────
	h := leave.New(
		ingress.NewParser(),
		notify.NewComposer(cfg.Sender()),
		sender,
		cfg.SendTimeout,
		log,
	)

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router.New(h, log),

		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      writeTimeout(cfg.SendTimeout),
		IdleTimeout:       60 * time.Second,
	}

	// ── 5. Start Server in a Goroutine ────────────────────────────────────
	go func() {
		log.Info("server started", slog.String("address", "http://"+cfg.Addr()))

		if err := server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 6. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg.SendTimeout))
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// defaultShutdownTimeout bounds shutdown when sends have no time limit.
const defaultShutdownTimeout = 2 * time.Minute

// writeTimeout must outlast a slow mail dispatch. An unbounded send
// (sendTimeout == 0) gets an unbounded write.
func writeTimeout(sendTimeout time.Duration) time.Duration {
	if sendTimeout <= 0 {
		return 0
	}
	return sendTimeout + 30*time.Second
}

// shutdownTimeout gives in-flight requests the full send timeout to finish.
func shutdownTimeout(sendTimeout time.Duration) time.Duration {
	if sendTimeout <= 0 {
		return defaultShutdownTimeout
	}
	return sendTimeout + 5*time.Second
}

// newSender builds the transport named by cfg.Provider.
func newSender(cfg *config.Config, log *slog.Logger) (mail.Sender, error) {
	switch cfg.Provider {
	case config.ProviderSMTP:
		if cfg.Pass == "" {
			log.Warn("EMAIL_PASS is empty; the SMTP server will likely reject authentication")
		}
		return smtp.New(smtp.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.User,
			Password: cfg.Pass,
			From:     cfg.Sender(),
		}), nil
	case config.ProviderResend:
		return resend.New(resend.Config{APIKey: cfg.ResendAPIKey, From: cfg.Sender()})
	case config.ProviderLog:
		return mail.NewLogSender(log), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
