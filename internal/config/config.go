package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort          string        `mapstructure:"SERVER_PORT"`
	APIBaseURL          string        `mapstructure:"API_BASE_URL"`
	APITimeout          time.Duration `mapstructure:"API_TIMEOUT"`
	JWTSecret           string        `mapstructure:"JWT_SECRET"`
	ClientOrigin        string        `mapstructure:"CLIENT_ORIGIN"`
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	SessionTTL          time.Duration `mapstructure:"SESSION_TTL"`
	StripeAPIKey        string        `mapstructure:"STRIPE_API_KEY"`
	StripeCurrency      string        `mapstructure:"STRIPE_CURRENCY"`
	AWSRegion           string        `mapstructure:"AWS_REGION"`
	ReceiptFromEmail    string        `mapstructure:"RECEIPT_FROM_EMAIL"`
	BackendServiceToken string        `mapstructure:"BACKEND_SERVICE_TOKEN"`
	OrdersPageSize      int           `mapstructure:"ORDERS_PAGE_SIZE"`
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
}

var defaults = map[string]any{
	"SERVER_PORT":           "8080",
	"API_BASE_URL":          "",
	"API_TIMEOUT":           "10s",
	"JWT_SECRET":            "",
	"CLIENT_ORIGIN":         "http://localhost:3000",
	"DATABASE_URL":          "",
	"SESSION_TTL":           "12h",
	"STRIPE_API_KEY":        "",
	"STRIPE_CURRENCY":       "inr",
	"AWS_REGION":            "ap-south-1",
	"RECEIPT_FROM_EMAIL":    "",
	"BACKEND_SERVICE_TOKEN": "",
	"ORDERS_PAGE_SIZE":      10,
	"LOG_LEVEL":             "info",
}

// LoadConfig reads .env from path and lets the environment override it.
// A missing .env file is fine.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Println("No .env file found.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("config: API_BASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("config: API_TIMEOUT must be positive, got %s", c.APITimeout)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.OrdersPageSize < 1 {
		return fmt.Errorf("config: ORDERS_PAGE_SIZE must be at least 1, got %d", c.OrdersPageSize)
	}
	return nil
}
