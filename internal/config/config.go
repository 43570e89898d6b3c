package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string `env:"SERVER_PORT,default=8080"`
	LogLevel   string `env:"LOG_LEVEL,default=info"`

	// Empty DatabaseURL / RedisURL fall back to in-process stores.
	DatabaseURL    string `env:"DATABASE_URL"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START,default=true"`
	RedisURL       string `env:"REDIS_URL"`

	JWTSecret string `env:"JWT_SECRET,required"`

	FlutterwaveSecretHash string `env:"FLUTTERWAVE_SECRET_HASH,required"`
	FlutterwaveSecretKey  string `env:"FLUTTERWAVE_SECRET_KEY"`
	FlutterwaveAPIURL     string `env:"FLUTTERWAVE_API_URL,default=https://api.flutterwave.com/v3"`

	MinWithdrawalCents int64 `env:"MIN_WITHDRAWAL_CENTS,default=5000"`
	WithdrawalFeeCents int64 `env:"WITHDRAWAL_FEE_CENTS,default=200"`
	WithdrawalFeeBPS   int64 `env:"WITHDRAWAL_FEE_BPS,default=0"`
	PlatformFeePercent int64 `env:"PLATFORM_FEE_PERCENT,default=20"`
	ReferralPercent    int64 `env:"REFERRAL_PERCENT,default=10"`

	VPSRestartDuration time.Duration `env:"VPS_RESTART_DURATION,default=30s"`
	SweepSchedule      string        `env:"SWEEP_SCHEDULE,default=@every 30s"`
	PresenceTTL        time.Duration `env:"PRESENCE_TTL,default=60s"`

	RateLimitRPS   int `env:"RATE_LIMIT_RPS,default=10"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST,default=20"`
}

func Load() (*Config, error) {
	// Load .env file if it exists (useful for local dev)
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
