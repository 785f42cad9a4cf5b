package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSecret = "0123456789abcdef0123456789abcdef"

// setEnv clears every variable Load reads, then applies vars
func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	keys := []string{
		"APP_MODE", "PORT", "JWT_SECRET", "DEV_JWT_SECRET", "PROD_JWT_SECRET", "JWT_ISSUER",
		"ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "LOCKOUT_THRESHOLD", "LOCKOUT_DURATION",
		"PASSWORD_EXPIRY_DAYS", "BCRYPT_COST", "REQUIRE_APPROVAL", "REFRESH_TOKEN_CLEANUP_CRON",
		"DEV_DB_NAME", "PROD_DB_NAME", "DEV_COOKIE_SECURE", "PROD_COOKIE_SECURE",
		"LOG_DEV", "LOG_LEVEL", "LOG_FILE", "ALLOWED_ORIGINS",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, map[string]string{"JWT_SECRET": validSecret})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppMode)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "it_incidents", cfg.Database.DBName)
	assert.Equal(t, validSecret, cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, 5, cfg.Security.LockoutThreshold)
	assert.Equal(t, 15*time.Minute, cfg.Security.LockoutDuration)
	assert.Equal(t, 90, cfg.Security.PasswordExpiryDays)
	assert.Equal(t, 12, cfg.Security.BcryptCost)
	assert.True(t, cfg.Security.RequireApproval)
	assert.Equal(t, "@every 1h", cfg.Security.TokenCleanupCronExp)
	assert.Equal(t, "*", cfg.GetAllowedOrigins())
}

func TestLoad_ModePrefixedValues(t *testing.T) {
	prodSecret := "prod-secret-prod-secret-prod-secret!"
	setEnv(t, map[string]string{
		"APP_MODE":           " prod ",
		"JWT_SECRET":         validSecret,
		"PROD_JWT_SECRET":    prodSecret,
		"DEV_JWT_SECRET":     "ignored-in-prod-ignored-in-prod-ignored",
		"PROD_DB_NAME":       "incidents_prod",
		"PROD_COOKIE_SECURE": "true",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
	assert.Equal(t, prodSecret, cfg.JWT.Secret)
	assert.Equal(t, "incidents_prod", cfg.Database.DBName)
	assert.True(t, cfg.Cookie.Secure)
	assert.Equal(t, "https://incidents.example.com", cfg.GetAllowedOrigins())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		msg  string
	}{
		{"unknown mode", map[string]string{"APP_MODE": "staging"}, "invalid APP_MODE"},
		{"missing secret", map[string]string{"JWT_SECRET": ""}, "DEV_JWT_SECRET must be at least 32 bytes"},
		{"short secret", map[string]string{"JWT_SECRET": "too-short"}, "DEV_JWT_SECRET must be at least 32 bytes"},
		{"short prefixed secret wins", map[string]string{"DEV_JWT_SECRET": "too-short"}, "DEV_JWT_SECRET must be at least 32 bytes"},
		{"bad access ttl", map[string]string{"ACCESS_TOKEN_TTL": "soon"}, "invalid ACCESS_TOKEN_TTL"},
		{"negative refresh ttl", map[string]string{"REFRESH_TOKEN_TTL": "-1h"}, "REFRESH_TOKEN_TTL must be positive"},
		{"bad lockout duration", map[string]string{"LOCKOUT_DURATION": "15"}, "invalid LOCKOUT_DURATION"},
		{"non numeric threshold", map[string]string{"LOCKOUT_THRESHOLD": "five"}, "invalid LOCKOUT_THRESHOLD"},
		{"zero threshold", map[string]string{"LOCKOUT_THRESHOLD": "0"}, "LOCKOUT_THRESHOLD must be positive"},
		{"bad approval flag", map[string]string{"REQUIRE_APPROVAL": "maybe"}, "invalid REQUIRE_APPROVAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := map[string]string{"JWT_SECRET": validSecret}
			for k, v := range tt.vars {
				vars[k] = v
			}
			setEnv(t, vars)

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestConfig_SecurityPolicy(t *testing.T) {
	setEnv(t, map[string]string{
		"JWT_SECRET":           validSecret,
		"LOCKOUT_THRESHOLD":    "3",
		"LOCKOUT_DURATION":     "30m",
		"PASSWORD_EXPIRY_DAYS": "30",
		"REQUIRE_APPROVAL":     "false",
	})

	cfg, err := Load()
	require.NoError(t, err)

	policy := cfg.SecurityPolicy()
	assert.Equal(t, 3, policy.LockoutThreshold)
	assert.Equal(t, 30*time.Minute, policy.LockoutDuration)
	assert.Equal(t, 30*24*time.Hour, policy.PasswordExpiry)
	assert.False(t, policy.RequireApproval)
}
