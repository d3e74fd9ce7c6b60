package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
)

// Config keeps runtime settings for the API server.
type Config struct {
	Env           string
	LogLevel      string
	HTTPAddr      string
	DatabaseDSN   string
	PublicBaseURL string
	StorageDir    string
	JWTSecret     string
	TokenTTL      time.Duration
	// Retention is how long soft-deleted tasks are kept before the
	// sweep purges them permanently. Zero disables the sweep.
	Retention time.Duration
	// SweepAt is the local HH:MM time of the daily retention sweep.
	SweepAt string
	SMTP    SMTPConfig
}

// SMTPConfig configures outgoing verification mail. An empty Host
// disables mail delivery.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("app_env", "local")
	v.SetDefault("app_log_level", "info")
	v.SetDefault("app_http_addr", ":8080")
	v.SetDefault("db_dsn", "taskdeck.db")
	v.SetDefault("public_base_url", "http://localhost:8080")
	v.SetDefault("storage_dir", "storage/task_attachments")
	v.SetDefault("jwt_secret", "dev_secret_change_me")
	v.SetDefault("token_ttl", "24h")
	v.SetDefault("archive_retention", "720h")
	v.SetDefault("retention_sweep_at", "03:30")
	v.SetDefault("smtp_port", 587)

	cfg := Config{
		Env:           v.GetString("app_env"),
		LogLevel:      v.GetString("app_log_level"),
		HTTPAddr:      v.GetString("app_http_addr"),
		DatabaseDSN:   strings.TrimSpace(v.GetString("db_dsn")),
		PublicBaseURL: strings.TrimRight(v.GetString("public_base_url"), "/"),
		StorageDir:    v.GetString("storage_dir"),
		JWTSecret:     v.GetString("jwt_secret"),
		TokenTTL:      v.GetDuration("token_ttl"),
		Retention:     v.GetDuration("archive_retention"),
		SweepAt:       v.GetString("retention_sweep_at"),
		SMTP: SMTPConfig{
			Host: v.GetString("smtp_host"),
			Port: v.GetInt("smtp_port"),
			User: v.GetString("smtp_user"),
			Pass: v.GetString("smtp_pass"),
			From: v.GetString("smtp_from"),
		},
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if strings.Contains(cfg.DatabaseDSN, "@tcp(") {
		if _, err := mysql.ParseDSN(cfg.DatabaseDSN); err != nil {
			return cfg, fmt.Errorf("invalid mysql DSN: %w", err)
		}
	}
	return cfg, nil
}
