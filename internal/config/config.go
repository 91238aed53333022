package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"catalog/pkg/database"
	"catalog/pkg/imageprovider"
	"catalog/pkg/rabbitmq"
)

// Config holds the service configuration.
type Config struct {
	Port         string
	ServiceName  string
	LogLevel     string
	LogPretty    bool
	OTLPEndpoint string
	QueryTimeout time.Duration
	Database     database.Config
	Image        imageprovider.Config
	RabbitMQ     rabbitmq.Config
}

// ListenAddr returns the address passed to the HTTP listener.
func (c *Config) ListenAddr() string {
	return ":" + c.Port
}

// EventsEnabled reports whether product events should be published.
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQ.URL != ""
}

// SetDefaults registers the documented defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3001")
	v.SetDefault("SERVICE_NAME", "product-catalog")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "ecommerce_db")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("DB_QUERY_TIMEOUT", "5s")

	v.SetDefault("IMAGE_SERVICE_URL", imageprovider.DefaultURL)
	v.SetDefault("IMAGE_TIMEOUT", "10s")

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", rabbitmq.DefaultQueue)
}

// Load reads configuration from environment variables on top of the defaults.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from v and validates it.
func FromViper(v *viper.Viper) (*Config, error) {
	connMaxLifetime, err := duration(v, "DB_CONN_MAX_LIFETIME")
	if err != nil {
		return nil, err
	}
	queryTimeout, err := duration(v, "DB_QUERY_TIMEOUT")
	if err != nil {
		return nil, err
	}
	imageTimeout, err := duration(v, "IMAGE_TIMEOUT")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:         v.GetString("PORT"),
		ServiceName:  v.GetString("SERVICE_NAME"),
		LogLevel:     v.GetString("LOG_LEVEL"),
		LogPretty:    v.GetBool("LOG_PRETTY"),
		OTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		QueryTimeout: queryTimeout,
		Database: database.Config{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Image: imageprovider.Config{
			URL:     v.GetString("IMAGE_SERVICE_URL"),
			Timeout: imageTimeout,
		},
		RabbitMQ: rabbitmq.Config{
			URL:   v.GetString("RABBITMQ_URL"),
			Queue: v.GetString("RABBITMQ_QUEUE"),
		},
	}

	if cfg.Port == "" {
		return nil, fmt.Errorf("PORT must not be empty")
	}
	if cfg.Database.MaxOpenConns < 1 {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS must be at least 1, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns < 0 || cfg.Database.MaxIdleConns > cfg.Database.MaxOpenConns {
		return nil, fmt.Errorf("DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS, got %d", cfg.Database.MaxIdleConns)
	}

	return cfg, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}
