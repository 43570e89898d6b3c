package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Validate checks that all values are usable together.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.ServerPort)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %q", c.ServerPort)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.FlutterwaveSecretHash == "" {
		return errors.New("FLUTTERWAVE_SECRET_HASH must be set")
	}

	if c.MinWithdrawalCents < 1 {
		return errors.New("MIN_WITHDRAWAL_CENTS must be >= 1")
	}
	if c.WithdrawalFeeCents < 0 {
		return errors.New("WITHDRAWAL_FEE_CENTS must be >= 0")
	}
	if c.WithdrawalFeeBPS < 0 || c.WithdrawalFeeBPS >= 10000 {
		return fmt.Errorf("WITHDRAWAL_FEE_BPS must be in [0, 10000), got %d", c.WithdrawalFeeBPS)
	}
	if c.WithdrawalFeeCents+c.MinWithdrawalCents*c.WithdrawalFeeBPS/10000 >= c.MinWithdrawalCents {
		return errors.New("withdrawal fee must be less than MIN_WITHDRAWAL_CENTS")
	}

	if c.PlatformFeePercent < 0 || c.PlatformFeePercent > 100 {
		return fmt.Errorf("PLATFORM_FEE_PERCENT must be in [0, 100], got %d", c.PlatformFeePercent)
	}
	if c.ReferralPercent < 0 || c.ReferralPercent > c.PlatformFeePercent {
		return fmt.Errorf("REFERRAL_PERCENT must be in [0, PLATFORM_FEE_PERCENT], got %d", c.ReferralPercent)
	}

	if c.VPSRestartDuration <= 0 {
		return errors.New("VPS_RESTART_DURATION must be > 0")
	}
	if _, err := cron.ParseStandard(c.SweepSchedule); err != nil {
		return fmt.Errorf("SWEEP_SCHEDULE: %w", err)
	}
	if c.PresenceTTL <= 0 {
		return errors.New("PRESENCE_TTL must be > 0")
	}

	if c.RateLimitRPS < 1 {
		return errors.New("RATE_LIMIT_RPS must be >= 1")
	}
	if c.RateLimitBurst < 1 {
		return errors.New("RATE_LIMIT_BURST must be >= 1")
	}

	return nil
}
