package config

import (
	"time"

	"github.com/fixgo-platform/service-booking/internal/platform/config"
)

// GatewayConfig holds payment gateway settings.
type GatewayConfig struct {
	StripeSecretKey string
	// APIURL overrides the Stripe API base URL (stripe-mock, tests).
	APIURL     string
	Timeout    time.Duration
	MaxRetries int64
}

// ReconcilerConfig controls the stuck-refund reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	After    time.Duration
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port             string
	AppEnv           string
	LogPath          string
	DBConfig         config.DatabaseConfig
	KafkaConfig      config.KafkaConfig
	GatewayConfig    GatewayConfig
	ReconcilerConfig ReconcilerConfig
}

// Load reads configuration from BOOKING_* environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("BOOKING")
	if err != nil {
		return nil, err
	}

	v.SetDefault("SERVICE_PORT", "8082")
	v.SetDefault("DB_NAME", "booking_db")
	v.SetDefault("GATEWAY_TIMEOUT", "10s")
	v.SetDefault("GATEWAY_MAX_RETRIES", 2)
	v.SetDefault("REFUND_RECONCILE_INTERVAL", "1m")
	v.SetDefault("REFUND_RECONCILE_AFTER", "5m")

	return &ServiceConfig{
		Port:        config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:      config.GetAppEnv(v),
		LogPath:     v.GetString("LOG_PATH"),
		DBConfig:    config.LoadDatabaseConfig(v, "DB_NAME"),
		KafkaConfig: config.LoadKafkaConfig(v),
		GatewayConfig: GatewayConfig{
			StripeSecretKey: v.GetString("STRIPE_SECRET_KEY"),
			APIURL:          v.GetString("STRIPE_API_URL"),
			Timeout:         v.GetDuration("GATEWAY_TIMEOUT"),
			MaxRetries:      v.GetInt64("GATEWAY_MAX_RETRIES"),
		},
		ReconcilerConfig: ReconcilerConfig{
			Interval: v.GetDuration("REFUND_RECONCILE_INTERVAL"),
			After:    v.GetDuration("REFUND_RECONCILE_AFTER"),
		},
	}, nil
}
