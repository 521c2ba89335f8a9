package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("HTTP_ADDR", ":18080")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":18080", cfg.HTTPAddr)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5, cfg.RateLimitRPS)
	assert.Equal(t, "@every 15m", cfg.HousekeepingSchedule)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("APP_ENV=test\nGRPC_ADDR=:19090\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("APP_ENV")
		_ = os.Unsetenv("GRPC_ADDR")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":19090", cfg.GRPCAddr)
}

func TestValidate(t *testing.T) {
	cfg := Config{Environment: "production", JWTSecret: "short", TokenTTL: time.Hour, RateLimitRPS: 1, RateLimitBurst: 1}
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "a-sufficiently-long-secret"
	assert.NoError(t, cfg.Validate())

	cfg.AdminEmail = "admin@example.com"
	assert.Error(t, cfg.Validate(), "admin email without password")
}

func TestLoadSettings_Embedded(t *testing.T) {
	s, err := LoadSettings("")
	require.NoError(t, err)

	assert.Equal(t, "EUR", s.Currency)
	assert.True(t, s.VATRate("fr").Equal(decimal.RequireFromString("0.20")))
	assert.True(t, s.VATRate("ZZ").Equal(s.DefaultVATRate), "unknown countries fall back to the default rate")
	assert.True(t, s.VATRate("US").IsZero())

	p, ok := s.PickupPoint("PP-BUC-01")
	require.True(t, ok)
	assert.Equal(t, int64(1), p.CityID)
}

func TestParseSettings_Invalid(t *testing.T) {
	_, err := ParseSettings([]byte("currency: EUR\ndefault_vat_rate: \"1.5\"\ncard_limit: \"10\"\n"))
	assert.Error(t, err)

	_, err = ParseSettings([]byte("currency: EUR\ndefault_vat_rate: \"0.1\"\ncard_limit: \"10\"\npickup_points:\n  - id: A\n  - id: A\n"))
	assert.Error(t, err)
}
