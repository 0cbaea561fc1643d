package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	JWTTTL         time.Duration `mapstructure:"JWT_TTL"`
	GoogleClientID string        `mapstructure:"GOOGLE_CLIENT_ID"`

	AMQPURL         string        `mapstructure:"AMQP_URL"`
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	SummaryCacheTTL time.Duration `mapstructure:"SUMMARY_CACHE_TTL"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	DeliverySendRate float64 `mapstructure:"DELIVERY_SEND_RATE"`
	DeliveryOpenRate float64 `mapstructure:"DELIVERY_OPEN_RATE"`
}

var defaults = map[string]any{
	"PORT":               "8080",
	"DATABASE_URL":       "",
	"JWT_SECRET":         "",
	"JWT_TTL":            "6h",
	"GOOGLE_CLIENT_ID":   "",
	"AMQP_URL":           "",
	"REDIS_ADDR":         "",
	"SUMMARY_CACHE_TTL":  "24h",
	"LOG_LEVEL":          "info",
	"LOG_FORMAT":         "text",
	"DELIVERY_SEND_RATE": 0.9,
	"DELIVERY_OPEN_RATE": 0.3,
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	v := viper.New()
	// every key needs a default so AutomaticEnv values reach Unmarshal
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &c, nil
}

// Validate checks what every binary needs.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.DeliverySendRate < 0 || c.DeliverySendRate > 1 {
		errs = append(errs, fmt.Errorf("DELIVERY_SEND_RATE must be within [0,1], got %v", c.DeliverySendRate))
	}
	if c.DeliveryOpenRate < 0 || c.DeliveryOpenRate > 1 {
		errs = append(errs, fmt.Errorf("DELIVERY_OPEN_RATE must be within [0,1], got %v", c.DeliveryOpenRate))
	}
	if c.SummaryCacheTTL < 0 {
		errs = append(errs, errors.New("SUMMARY_CACHE_TTL must not be negative"))
	}
	return errors.Join(errs...)
}

// ValidateServer adds the keys the HTTP API needs.
func (c *Config) ValidateServer() error {
	errs := []error{c.Validate()}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.GoogleClientID == "" {
		errs = append(errs, errors.New("GOOGLE_CLIENT_ID is required"))
	}
	return errors.Join(errs...)
}
