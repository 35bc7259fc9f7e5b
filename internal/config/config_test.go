package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8082", cfg.Server.Port)
	assert.Equal(t, "https://ecommerce.routemisr.com/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, "userToken", cfg.Session.CookieName)
	assert.Equal(t, 5*time.Minute, cfg.Session.CacheTTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STOREFRONT_SERVER_PORT", "9000")
	t.Setenv("STOREFRONT_API_BASE_URL", "http://api.internal/v1")
	t.Setenv("STOREFRONT_API_TIMEOUT", "3s")
	t.Setenv("STOREFRONT_SESSION_COOKIE_NAME", "tok")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "http://api.internal/v1", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "tok", cfg.Session.CookieName)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "custom.yaml")
	content := "server:\n  port: \"7070\"\nsmtp:\n  user: shop@example.com\n  pass: secret\nlogging:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.SMTP.Enabled())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing port", func(c *Config) { c.Server.Port = "" }, "server.port"},
		{"bad base url", func(c *Config) { c.API.BaseURL = "ftp://x" }, "http(s)"},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, "api.timeout"},
		{"no cookie name", func(c *Config) { c.Session.CookieName = "" }, "cookie_name"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "invalid logging level"},
		{"zero burst", func(c *Config) { c.RateLimit.Burst = 0 }, "ratelimit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_OptionOverridesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", func(v *viper.Viper) error {
		v.Set("server.port", "7001")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "7001", cfg.Server.Port)
}

func TestLoad_OptionError(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Load("", func(v *viper.Viper) error {
		return os.ErrInvalid
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrInvalid)
}

func TestSMTPConfig_Enabled(t *testing.T) {
	assert.False(t, SMTPConfig{}.Enabled())
	assert.False(t, SMTPConfig{User: "shop@example.com"}.Enabled())
	assert.False(t, SMTPConfig{Pass: "secret"}.Enabled())
	assert.True(t, SMTPConfig{User: "shop@example.com", Pass: "secret"}.Enabled())
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir on older Go).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
