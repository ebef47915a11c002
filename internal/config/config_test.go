package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BACKEND_BASE_URL", "https://backend.example")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DYNAMO_TABLE_NAME", "donation-flow")
	t.Setenv("AWS_REGION", "af-south-1")
	t.Setenv("PAYMENT_SUCCESS_URL", "https://app.example/success")
	t.Setenv("PAYMENT_FAILURE_URL", "https://app.example/failure")
	t.Setenv("PAYMENT_CANCEL_URL", "https://app.example/cancel")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV", "")
	t.Setenv("DONATION_CURRENCY", "")
	t.Setenv("INACTIVITY_TIMEOUT", "")
	t.Setenv("OUTCOME_COUNTDOWN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Env != "dev" {
		t.Errorf("Env = %q, want dev", cfg.Env)
	}
	if cfg.Currency != "ZAR" {
		t.Errorf("Currency = %q, want ZAR", cfg.Currency)
	}
	if cfg.BackendTimeout != 15*time.Second {
		t.Errorf("BackendTimeout = %v", cfg.BackendTimeout)
	}
	if cfg.InactivityTimeout != 5*time.Minute {
		t.Errorf("InactivityTimeout = %v", cfg.InactivityTimeout)
	}
	if cfg.SweepInterval != time.Minute {
		t.Errorf("SweepInterval = %v", cfg.SweepInterval)
	}
	if cfg.OutcomeCountdown != 5*time.Second {
		t.Errorf("OutcomeCountdown = %v", cfg.OutcomeCountdown)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DONATION_CURRENCY", "USD")
	t.Setenv("INACTIVITY_TIMEOUT", "10m")
	t.Setenv("OUTCOME_COUNTDOWN", "bogus")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", cfg.Currency)
	}
	if cfg.InactivityTimeout != 10*time.Minute {
		t.Errorf("InactivityTimeout = %v, want 10m", cfg.InactivityTimeout)
	}
	// unparseable durations fall back
	if cfg.OutcomeCountdown != 5*time.Second {
		t.Errorf("OutcomeCountdown = %v, want 5s", cfg.OutcomeCountdown)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded, want error for missing JWT_SECRET")
	}
}
