package config

import (
	"os"
	"testing"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost/medfatt_test")
	defer os.Unsetenv("DATABASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.TransmitterCountry != "IT" {
		t.Errorf("expected default transmitter country IT, got %s", cfg.TransmitterCountry)
	}
	if cfg.RecipientCode != "0000000" {
		t.Errorf("expected default recipient code 0000000, got %s", cfg.RecipientCode)
	}
	if !cfg.IsDev() {
		t.Error("expected default env to be development")
	}
}

func TestValidate_ProductionNeedsSecret(t *testing.T) {
	cfg := &Config{
		Env:                "production",
		TransmitterCountry: "IT",
		TransmitterCode:    "01234567890",
		RecipientCode:      "0000000",
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing JWT_SECRET in production")
	}
	cfg.JWTSecret = "s3cret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_TransmitterCountry(t *testing.T) {
	cfg := &Config{
		Env:                "development",
		TransmitterCountry: "ITA",
		RecipientCode:      "0000000",
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for 3-letter country code")
	}
}
