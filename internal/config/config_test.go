package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("FLUTTERWAVE_SECRET_HASH", "whsec")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.MigrateOnStart)
	assert.Equal(t, "https://api.flutterwave.com/v3", cfg.FlutterwaveAPIURL)
	assert.Equal(t, int64(5000), cfg.MinWithdrawalCents)
	assert.Equal(t, int64(200), cfg.WithdrawalFeeCents)
	assert.Equal(t, int64(20), cfg.PlatformFeePercent)
	assert.Equal(t, int64(10), cfg.ReferralPercent)
	assert.Equal(t, 30*time.Second, cfg.VPSRestartDuration)
	assert.Equal(t, "@every 30s", cfg.SweepSchedule)
	assert.Equal(t, time.Minute, cfg.PresenceTTL)
	assert.Equal(t, 10, cfg.RateLimitRPS)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://localhost/fxvps")
	t.Setenv("MIN_WITHDRAWAL_CENTS", "10000")
	t.Setenv("WITHDRAWAL_FEE_BPS", "150")
	t.Setenv("VPS_RESTART_DURATION", "2m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, "postgres://localhost/fxvps", cfg.DatabaseURL)
	assert.Equal(t, int64(10000), cfg.MinWithdrawalCents)
	assert.Equal(t, int64(150), cfg.WithdrawalFeeBPS)
	assert.Equal(t, 2*time.Minute, cfg.VPSRestartDuration)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("FLUTTERWAVE_SECRET_HASH", "whsec")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func validConfig() Config {
	return Config{
		ServerPort:            "8080",
		LogLevel:              "info",
		JWTSecret:             "s",
		FlutterwaveSecretHash: "h",
		MinWithdrawalCents:    5000,
		WithdrawalFeeCents:    200,
		PlatformFeePercent:    20,
		ReferralPercent:       10,
		VPSRestartDuration:    30 * time.Second,
		SweepSchedule:         "@every 30s",
		PresenceTTL:           time.Minute,
		RateLimitRPS:          10,
		RateLimitBurst:        20,
	}
}

func TestValidate(t *testing.T) {
	ok := validConfig()
	require.NoError(t, ok.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"port", func(c *Config) { c.ServerPort = "http" }, "SERVER_PORT"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
		{"fee eats minimum", func(c *Config) { c.WithdrawalFeeCents = 5000 }, "withdrawal fee"},
		{"bps", func(c *Config) { c.WithdrawalFeeBPS = 10000 }, "WITHDRAWAL_FEE_BPS"},
		{"platform", func(c *Config) { c.PlatformFeePercent = 101 }, "PLATFORM_FEE_PERCENT"},
		{"referral above platform", func(c *Config) { c.ReferralPercent = 25 }, "REFERRAL_PERCENT"},
		{"schedule", func(c *Config) { c.SweepSchedule = "every so often" }, "SWEEP_SCHEDULE"},
		{"restart", func(c *Config) { c.VPSRestartDuration = 0 }, "VPS_RESTART_DURATION"},
		{"rate", func(c *Config) { c.RateLimitRPS = 0 }, "RATE_LIMIT_RPS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
