package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"DATABASE_URL":   "postgres://localhost/rl",
		"JWT_SECRET_KEY": "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "http://localhost:8080", cfg.PublicURL)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 20.0, cfg.RateLimitRPS)
	assert.Equal(t, 40, cfg.RateLimitBurst)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.SMTPEnabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"DATABASE_URL":         "postgres://localhost/rl",
		"JWT_SECRET_KEY":       "secret",
		"SERVER_PORT":          "9000",
		"PUBLIC_URL":           "https://prono.example.com/",
		"CORS_ALLOWED_ORIGINS": "https://a.example.com, https://b.example.com",
		"LOG_LEVEL":            "debug",
		"SMTP_HOST":            "smtp.example.com",
		"SMTP_FROM":            "noreply@example.com",
		"SMTP_PORT":            "465",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, "https://prono.example.com", cfg.PublicURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.True(t, cfg.SMTPEnabled())
}

func TestFromEnv_Errors(t *testing.T) {
	with := func(kv ...string) map[string]string {
		env := map[string]string{"DATABASE_URL": "postgres://localhost/rl", "JWT_SECRET_KEY": "secret"}
		for i := 0; i+1 < len(kv); i += 2 {
			env[kv[i]] = kv[i+1]
		}
		return env
	}

	cases := map[string]map[string]string{
		"missing database": with("DATABASE_URL", ""),
		"missing jwt key":  with("JWT_SECRET_KEY", ""),
		"bad port":         with("SERVER_PORT", "70000"),
		"port not number":  with("SERVER_PORT", "http"),
		"bad rps":          with("RATE_LIMIT_RPS", "-1"),
		"bad log level":    with("LOG_LEVEL", "loud"),
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envMap(env))
			assert.Error(t, err)
		})
	}
}
