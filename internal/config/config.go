package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env             string
	BackendBaseURL  string
	BackendAPIKey   string
	JWTSecret       string
	DynamoTableName string
	AwsRegion       string

	Currency          string
	PaymentSuccessURL string
	PaymentFailureURL string
	PaymentCancelURL  string

	BackendTimeout    time.Duration
	InactivityTimeout time.Duration
	SweepInterval     time.Duration
	OutcomeCountdown  time.Duration
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:             strings.TrimSpace(os.Getenv("ENV")),
		BackendBaseURL:  strings.TrimSpace(os.Getenv("BACKEND_BASE_URL")),
		BackendAPIKey:   strings.TrimSpace(os.Getenv("BACKEND_API_KEY")),
		JWTSecret:       strings.TrimSpace(os.Getenv("JWT_SECRET")),
		DynamoTableName: strings.TrimSpace(os.Getenv("DYNAMO_TABLE_NAME")),
		AwsRegion:       strings.TrimSpace(os.Getenv("AWS_REGION")),

		Currency:          strings.TrimSpace(os.Getenv("DONATION_CURRENCY")),
		PaymentSuccessURL: strings.TrimSpace(os.Getenv("PAYMENT_SUCCESS_URL")),
		PaymentFailureURL: strings.TrimSpace(os.Getenv("PAYMENT_FAILURE_URL")),
		PaymentCancelURL:  strings.TrimSpace(os.Getenv("PAYMENT_CANCEL_URL")),

		BackendTimeout:    duration("BACKEND_TIMEOUT", 15*time.Second),
		InactivityTimeout: duration("INACTIVITY_TIMEOUT", 5*time.Minute),
		SweepInterval:     duration("INACTIVITY_SWEEP_INTERVAL", time.Minute),
		OutcomeCountdown:  duration("OUTCOME_COUNTDOWN", 5*time.Second),
	}

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Currency == "" {
		cfg.Currency = "ZAR"
	}

	if cfg.BackendBaseURL == "" {
		return Config{}, errors.New("BACKEND_BASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET not set")
	}
	if cfg.DynamoTableName == "" {
		return Config{}, errors.New("DYNAMO_TABLE_NAME not set")
	}
	if cfg.AwsRegion == "" {
		return Config{}, errors.New("AWS_REGION not set")
	}
	if cfg.PaymentSuccessURL == "" || cfg.PaymentFailureURL == "" || cfg.PaymentCancelURL == "" {
		return Config{}, errors.New("PAYMENT_SUCCESS_URL, PAYMENT_FAILURE_URL and PAYMENT_CANCEL_URL must be set")
	}

	return cfg, nil
}

func duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
