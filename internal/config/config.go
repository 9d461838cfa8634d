package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	LogLevel    string   `mapstructure:"LOG_LEVEL"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`
	JWTSecret   string   `mapstructure:"JWT_SECRET"`

	// Interchange transmission metadata. The transmitter is the party that
	// uploads documents to the exchange system, normally the issuer itself.
	TransmitterCountry string `mapstructure:"TRANSMITTER_COUNTRY"`
	TransmitterCode    string `mapstructure:"TRANSMITTER_CODE"`
	RecipientCode      string `mapstructure:"SDI_RECIPIENT_CODE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("TRANSMITTER_COUNTRY", "IT")
	v.SetDefault("SDI_RECIPIENT_CODE", "0000000")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("TRANSMITTER_COUNTRY")
	v.BindEnv("TRANSMITTER_CODE")
	v.BindEnv("SDI_RECIPIENT_CODE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside development
// a JWT secret must be set so that real authentication is enforced, and the
// transmitter identity must be configured because every generated document
// carries it in the transmission header.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV=%q; refusing to start without authentication", c.Env)
	}
	if c.IsProduction() && c.TransmitterCode == "" {
		return fmt.Errorf("TRANSMITTER_CODE is required in production: generated documents embed the transmitter tax id")
	}
	if len(c.TransmitterCountry) != 2 {
		return fmt.Errorf("TRANSMITTER_COUNTRY must be a 2-letter ISO country code, got %q", c.TransmitterCountry)
	}
	if len(c.RecipientCode) != 7 {
		return fmt.Errorf("SDI_RECIPIENT_CODE must be 7 characters, got %q", c.RecipientCode)
	}
	return nil
}
