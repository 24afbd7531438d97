package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config reúne todo lo configurable del backend. Defaults pensados para la
// demo local: broker MQTT en localhost y almacenamiento in-memory si no hay
// DSN de Postgres.
type Config struct {
	HTTPAddr string `mapstructure:"http_addr"`

	DBDSN string `mapstructure:"db_dsn"`

	MQTTBrokerURL string `mapstructure:"mqtt_broker_url"`
	MQTTClientID  string `mapstructure:"mqtt_client_id"`
	MQTTTopic     string `mapstructure:"mqtt_topic"`

	// SourceTimezone interpreta timestamps sin offset en la ingesta;
	// DisplayTimezone solo afecta cómo se presentan al cliente.
	SourceTimezone  string `mapstructure:"source_timezone"`
	DisplayTimezone string `mapstructure:"display_timezone"`

	LivenessInterval  time.Duration `mapstructure:"liveness_interval"`
	LivenessThreshold time.Duration `mapstructure:"liveness_threshold"`
	RetentionInterval time.Duration `mapstructure:"retention_interval"`
	RetentionHorizon  time.Duration `mapstructure:"retention_horizon"`

	SmoothingWindow int `mapstructure:"smoothing_window"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Load lee pet-telemetry.yaml (cwd o /etc/pet-telemetry) si existe y deja
// que las variables PET_TELEMETRY_* pisen cualquier valor.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("pet-telemetry")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/pet-telemetry")

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("db_dsn", "")
	v.SetDefault("mqtt_broker_url", "tcp://localhost:1883")
	v.SetDefault("mqtt_client_id", "pet-telemetry-api")
	v.SetDefault("mqtt_topic", "pet/health")
	v.SetDefault("source_timezone", "UTC")
	v.SetDefault("display_timezone", "UTC")
	v.SetDefault("liveness_interval", time.Hour)
	v.SetDefault("liveness_threshold", 24*time.Hour)
	v.SetDefault("retention_interval", 24*time.Hour)
	v.SetDefault("retention_horizon", 30*24*time.Hour)
	v.SetDefault("smoothing_window", 3)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetEnvPrefix("PET_TELEMETRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.SmoothingWindow < 1 {
		return nil, fmt.Errorf("smoothing_window must be >= 1, got %d", cfg.SmoothingWindow)
	}
	for _, d := range []struct {
		name string
		val  time.Duration
	}{
		{"liveness_interval", cfg.LivenessInterval},
		{"liveness_threshold", cfg.LivenessThreshold},
		{"retention_interval", cfg.RetentionInterval},
		{"retention_horizon", cfg.RetentionHorizon},
	} {
		if d.val <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %s", d.name, d.val)
		}
	}

	return cfg, nil
}

func (c *Config) SourceLocation() (*time.Location, error) {
	return time.LoadLocation(c.SourceTimezone)
}

func (c *Config) DisplayLocation() (*time.Location, error) {
	return time.LoadLocation(c.DisplayTimezone)
}
