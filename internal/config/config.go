package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/elonfeng/kwradar/pkg/keyword"
	"github.com/elonfeng/kwradar/pkg/lifecycle"
	"github.com/elonfeng/kwradar/pkg/scoring"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Analysis AnalysisConfig `yaml:"analysis" toml:"analysis"`
	Schedule ScheduleConfig `yaml:"schedule" toml:"schedule"`
	Sources  []SourceConfig `yaml:"sources" toml:"sources"`
	Filter   FilterConfig   `yaml:"filter" toml:"filter"`
	Alerts   AlertsConfig   `yaml:"alerts" toml:"alerts"`
	Server   ServerConfig   `yaml:"server" toml:"server"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// AnalysisConfig configures scoring and classification.
type AnalysisConfig struct {
	BrandName     string `yaml:"brand_name" toml:"brand_name"`
	HistoryMonths int    `yaml:"history_months" toml:"history_months"` // months of history that count as YoY data
	TopN          int    `yaml:"top_n" toml:"top_n"`
}

// ScheduleConfig configures the re-analysis interval.
type ScheduleConfig struct {
	AnalyzeInterval string `yaml:"analyze_interval" toml:"analyze_interval"`
}

// ParseAnalyzeInterval returns the analyze interval as time.Duration.
func (s ScheduleConfig) ParseAnalyzeInterval() time.Duration {
	d, err := time.ParseDuration(s.AnalyzeInterval)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// SourceConfig is one Keyword Planner export the scheduler re-imports on
// every tick. Exactly one of Path and URL is set.
type SourceConfig struct {
	Name string `yaml:"name" toml:"name"`
	Path string `yaml:"path" toml:"path"`
	URL  string `yaml:"url" toml:"url"`
}

// FilterConfig configures which imported keywords are kept.
type FilterConfig struct {
	IncludeKeywords []string `yaml:"include_keywords" toml:"include_keywords"`
	ExcludeKeywords []string `yaml:"exclude_keywords" toml:"exclude_keywords"`
}

// AlertsConfig configures alert destinations and which categories trigger them.
type AlertsConfig struct {
	Categories []string      `yaml:"categories" toml:"categories"`
	Slack      SlackConfig   `yaml:"slack" toml:"slack"`
	Discord    DiscordConfig `yaml:"discord" toml:"discord"`
	Webhook    WebhookConfig `yaml:"webhook" toml:"webhook"`
}

// WatchedCategories returns the configured category names as categories.
// Unknown names are skipped; Validate reports them.
func (a AlertsConfig) WatchedCategories() []lifecycle.Category {
	out := make([]lifecycle.Category, 0, len(a.Categories))
	for _, name := range a.Categories {
		if c, ok := lifecycle.ParseCategory(name); ok {
			out = append(out, c)
		}
	}
	return out
}

// SlackConfig for Slack webhook alerts.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled" toml:"enabled"`
	WebhookURL string `yaml:"webhook_url" toml:"webhook_url"`
}

// DiscordConfig for Discord webhook alerts.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled" toml:"enabled"`
	WebhookURL string `yaml:"webhook_url" toml:"webhook_url"`
}

// WebhookConfig for generic webhook alerts.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	URL     string `yaml:"url" toml:"url"`
	Secret  string `yaml:"secret" toml:"secret"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" toml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./kwradar.db"},
		Analysis: AnalysisConfig{
			HistoryMonths: keyword.YoYHistoryMonths,
			TopN:          scoring.TopN,
		},
		Schedule: ScheduleConfig{AnalyzeInterval: "1h"},
		Alerts: AlertsConfig{
			Categories: []string{string(lifecycle.UltraGrowth), string(lifecycle.ExtremeGrowth)},
		},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML or TOML file and applies env var
// overrides. The format follows the file extension; an empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KWRADAR_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("KWRADAR_BRAND"); v != "" {
		cfg.Analysis.BrandName = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Slack.WebhookURL = v
		cfg.Alerts.Slack.Enabled = true
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Discord.WebhookURL = v
		cfg.Alerts.Discord.Enabled = true
	}
	if v := os.Getenv("KWRADAR_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Webhook.URL = v
		cfg.Alerts.Webhook.Enabled = true
	}
	if v := os.Getenv("KWRADAR_WEBHOOK_SECRET"); v != "" {
		cfg.Alerts.Webhook.Secret = v
	}
}

// Validate checks that the configuration is usable and reports every problem.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Analysis.HistoryMonths < 1 {
		errs = append(errs, errors.New("analysis.history_months must be at least 1"))
	}
	if c.Analysis.TopN < 1 {
		errs = append(errs, errors.New("analysis.top_n must be at least 1"))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, errors.New("server.port must be between 1 and 65535"))
	}
	for i, src := range c.Sources {
		if (src.Path == "") == (src.URL == "") {
			errs = append(errs, fmt.Errorf("sources[%d]: exactly one of path and url is required", i))
		}
	}
	for _, name := range c.Alerts.Categories {
		if _, ok := lifecycle.ParseCategory(name); !ok {
			errs = append(errs, fmt.Errorf("alerts.categories: unknown category '%s'", name))
		}
	}
	if c.Alerts.Slack.Enabled && c.Alerts.Slack.WebhookURL == "" {
		errs = append(errs, errors.New("alerts.slack.webhook_url is required when slack is enabled"))
	}
	if c.Alerts.Discord.Enabled && c.Alerts.Discord.WebhookURL == "" {
		errs = append(errs, errors.New("alerts.discord.webhook_url is required when discord is enabled"))
	}
	if c.Alerts.Webhook.Enabled && c.Alerts.Webhook.URL == "" {
		errs = append(errs, errors.New("alerts.webhook.url is required when webhook is enabled"))
	}

	return errors.Join(errs...)
}
