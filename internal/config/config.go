// Package config handles loading and parsing application configuration.
// It supports three sources (later ones win):
//  1. A .env file in the working directory (optional)
//  2. A YAML file given by CONFIG_PATH or the --config flag (optional)
//  3. Process environment variables
//
// The parsed values are returned as a *Config pointer so the struct is
// shared by reference rather than copied everywhere. Configuration is read
// once at startup; there is no hot-reload.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Mail provider names accepted in MAIL_PROVIDER.
const (
	ProviderSMTP   = "smtp"
	ProviderResend = "resend"
	ProviderLog    = "log"
)

// Config is the root configuration structure.
// Every field maps to a key in the optional YAML file AND can be
// overridden by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity: "dev", "staging", "prod".
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	HTTPServer `yaml:"http_server"`
	Mail       `yaml:"mail"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	Host string `yaml:"host" env:"HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"PORT" env-default:"5000" validate:"required,numeric"`
}

// Mail holds the outbound mail transport settings. EMAIL_USER and
// EMAIL_PASS double as SMTP credentials for the default provider.
type Mail struct {
	Provider string `yaml:"provider" env:"MAIL_PROVIDER" env-default:"smtp" validate:"oneof=smtp resend log"`

	User string `yaml:"user" env:"EMAIL_USER"`
	Pass string `yaml:"pass" env:"EMAIL_PASS"`
	From string `yaml:"from" env:"EMAIL_FROM"`

	SMTPHost string `yaml:"smtp_host" env:"SMTP_HOST" env-default:"smtp.gmail.com"`
	SMTPPort string `yaml:"smtp_port" env:"SMTP_PORT" env-default:"587" validate:"numeric"`

	ResendAPIKey string `yaml:"resend_api_key" env:"RESEND_API_KEY"`

	// SendTimeout bounds a single dispatch. Zero disables the bound.
	SendTimeout time.Duration `yaml:"send_timeout" env:"MAIL_SEND_TIMEOUT" env-default:"30s"`
}

// Addr is the TCP address the server listens on, e.g. "0.0.0.0:5000".
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Sender is the address placed in the From header of every message.
func (c *Config) Sender() string {
	if c.From != "" {
		return c.From
	}
	return c.User
}

// Load reads configuration from path (if non-empty) and the environment,
// then validates it.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		// cleanenv.ReadConfig reads the YAML file, then applies env
		// overrides and env-default values.
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Provider {
	case ProviderSMTP:
		if c.User == "" {
			return errors.New("EMAIL_USER is required for the smtp provider")
		}
	case ProviderResend:
		if c.ResendAPIKey == "" {
			return errors.New("RESEND_API_KEY is required for the resend provider")
		}
		if c.Sender() == "" {
			return errors.New("EMAIL_FROM or EMAIL_USER is required for the resend provider")
		}
	}

	return nil
}

// MustLoad reads, validates, and returns the application config.
// It exits the process on failure; if it returns, the config is valid.
func MustLoad() *Config {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("cannot read .env: %s", err.Error())
	}

	// ── Source 1: environment variable ───────────────────────────────
	configPath := os.Getenv("CONFIG_PATH")

	// ── Source 2: command-line flag ───────────────────────────────────
	if configPath == "" {
		flags := flag.String("config", "", "Path to an optional configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			log.Fatalf("config file does not exist: %s", configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}

	return cfg
}
