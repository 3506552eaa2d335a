package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port       int    `mapstructure:"port"`
		AuthSecret string `mapstructure:"auth_secret"`
	} `mapstructure:"server"`

	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`

	Monitoring struct {
		EvaluationIntervalSeconds        int     `mapstructure:"evaluation_interval_seconds"`
		MaxAlertHistorySize              int     `mapstructure:"max_alert_history_size"`
		MaxMetricHistoryPerSeries        int     `mapstructure:"max_metric_history_per_series"`
		AutoResolveEnabled               bool    `mapstructure:"auto_resolve_enabled"`
		MaxNotificationsPerHour          int     `mapstructure:"max_notifications_per_hour"`
		SuppressDuplicateDurationSeconds int     `mapstructure:"suppress_duplicate_duration_seconds"`
		HealthMaxErrorRatePercent        float64 `mapstructure:"health_max_error_rate_percent"`
		HealthMaxAvgLatencySeconds       float64 `mapstructure:"health_max_avg_latency_seconds"`
		RulesFile                        string  `mapstructure:"rules_file"`
	} `mapstructure:"monitoring"`
}

func (c *Config) EvaluationInterval() time.Duration {
	return time.Duration(c.Monitoring.EvaluationIntervalSeconds) * time.Second
}

func (c *Config) SuppressDuplicateDuration() time.Duration {
	return time.Duration(c.Monitoring.SuppressDuplicateDurationSeconds) * time.Second
}

// Load reads config.yaml from the given directory (or the working
// directory when empty). A missing file is not an error; defaults
// apply.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir == "" {
		dir = "."
	}
	v.AddConfigPath(dir)

	v.SetDefault("server.port", 8080)
	v.SetDefault("database.path", "data/synapse-monitor.db")
	v.SetDefault("monitoring.evaluation_interval_seconds", 30)
	v.SetDefault("monitoring.max_alert_history_size", 1000)
	v.SetDefault("monitoring.max_metric_history_per_series", 1000)
	v.SetDefault("monitoring.auto_resolve_enabled", true)
	v.SetDefault("monitoring.max_notifications_per_hour", 10)
	v.SetDefault("monitoring.suppress_duplicate_duration_seconds", 300)
	v.SetDefault("monitoring.health_max_error_rate_percent", 5)
	v.SetDefault("monitoring.health_max_avg_latency_seconds", 5)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}
	return &cfg, nil
}
