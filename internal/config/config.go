package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Publish   PublishConfig   `mapstructure:"publish"`
	History   HistoryConfig   `mapstructure:"history"`
	Platforms PlatformsConfig `mapstructure:"platforms"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`

	// OutputPaths defaults to stdout when empty.
	OutputPaths []string `mapstructure:"output_paths"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type PublishConfig struct {
	// Disabled is the global kill-switch: every dispatch is rejected while set.
	Disabled bool `mapstructure:"disabled"`

	// Timeout bounds a single outbound platform call (probe or publish).
	Timeout time.Duration `mapstructure:"timeout"`

	// SweepInterval is how often stale pending history rows are failed out.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type HistoryConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size"`

	// RetentionDays <= 0 keeps history forever.
	RetentionDays  int    `mapstructure:"retention_days"`
	RetentionSweep string `mapstructure:"retention_sweep"`
}

type PlatformsConfig struct {
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	VK        VKConfig        `mapstructure:"vk"`
	Instagram InstagramConfig `mapstructure:"instagram"`
	Facebook  FacebookConfig  `mapstructure:"facebook"`
}

type TelegramConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type VKConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIVersion string `mapstructure:"api_version"`
}

type InstagramConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type FacebookConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("publish.disabled", false)
	v.SetDefault("publish.timeout", "30s")
	v.SetDefault("publish.sweep_interval", "1m")
	v.SetDefault("history.default_page_size", 20)
	v.SetDefault("history.retention_days", 0)
	v.SetDefault("history.retention_sweep", "@daily")
	v.SetDefault("platforms.telegram.base_url", "https://api.telegram.org")
	v.SetDefault("platforms.vk.base_url", "https://api.vk.com")
	v.SetDefault("platforms.vk.api_version", "5.199")
	v.SetDefault("platforms.instagram.base_url", "https://graph.facebook.com/v19.0")
	v.SetDefault("platforms.facebook.base_url", "https://graph.facebook.com/v19.0")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
