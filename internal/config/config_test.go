package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"ENV", "HOST", "PORT", "MAIL_PROVIDER", "EMAIL_USER", "EMAIL_PASS", "EMAIL_FROM",
	"SMTP_HOST", "SMTP_PORT", "RESEND_API_KEY", "MAIL_SEND_TIMEOUT",
}

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test. t.Setenv restores the previous values on cleanup.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("EMAIL_USER", "leave.bot@gmail.com")
	t.Setenv("EMAIL_PASS", "app-password")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "0.0.0.0:5000", cfg.Addr())
	assert.Equal(t, ProviderSMTP, cfg.Provider)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTPHost)
	assert.Equal(t, "587", cfg.SMTPPort)
	assert.Equal(t, 30*time.Second, cfg.SendTimeout)
	assert.Equal(t, "leave.bot@gmail.com", cfg.Sender())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("EMAIL_USER", "leave.bot@gmail.com")
	t.Setenv("EMAIL_FROM", "Leave Desk <desk@x.edu>")
	t.Setenv("MAIL_SEND_TIMEOUT", "5s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "Leave Desk <desk@x.edu>", cfg.Sender())
	assert.Equal(t, 5*time.Second, cfg.SendTimeout)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "local.yaml")
	data := []byte(`env: prod
http_server:
  host: 127.0.0.1
  port: "9000"
mail:
  provider: log
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, ProviderLog, cfg.Provider)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown provider", env: map[string]string{"MAIL_PROVIDER": "pigeon", "EMAIL_USER": "u@x.edu"}},
		{name: "smtp without user", env: map[string]string{"MAIL_PROVIDER": "smtp"}},
		{name: "resend without key", env: map[string]string{"MAIL_PROVIDER": "resend", "EMAIL_FROM": "f@x.edu"}},
		{name: "resend without sender", env: map[string]string{"MAIL_PROVIDER": "resend", "RESEND_API_KEY": "re_123"}},
		{name: "non-numeric port", env: map[string]string{"PORT": "http", "EMAIL_USER": "u@x.edu"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			require.Error(t, err)
		})
	}
}
