// Package config provides YAML-based configuration loading for IndustryView.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config is the top-level IndustryView configuration, loaded from config.yaml.
type Config struct {
	ProjectID  uint             `yaml:"project_id"`
	UserID     uint             `yaml:"user_id"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	API        APIConfig        `yaml:"api"`
	Pagination PaginationConfig `yaml:"pagination"`
	Notify     NotifyConfig     `yaml:"notify"`
}

// ServerConfig holds settings for the REST server.
type ServerConfig struct {
	Port     int    `yaml:"port"`
	BasePath string `yaml:"base_path"`
	Token    string `yaml:"token"`
}

// DatabaseConfig selects and addresses the backing store.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// APIConfig holds the settings the client core uses to reach the server.
type APIConfig struct {
	BaseURL    string `yaml:"base_url"`
	Token      string `yaml:"token"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Timeout returns the request timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSec) * time.Second
}

// PaginationConfig restricts the page sizes a list may request.
type PaginationConfig struct {
	AllowedPerPage []int `yaml:"allowed_per_page"`
	DefaultPerPage int   `yaml:"default_per_page"`
}

// Allows reports whether n is one of the allowed page sizes.
func (p PaginationConfig) Allows(n int) bool {
	return slices.Contains(p.AllowedPerPage, n)
}

// Largest returns the biggest allowed page size, 0 when none is set.
func (p PaginationConfig) Largest() int {
	if len(p.AllowedPerPage) == 0 {
		return 0
	}
	return slices.Max(p.AllowedPerPage)
}

// NotifyConfig configures outbound chat notifications.
type NotifyConfig struct {
	Platform     string `yaml:"platform"`
	BotToken     string `yaml:"bot_token"`
	Channel      string `yaml:"channel"`
	DigestCron   string `yaml:"digest_cron"`
	OnTaskFailed *bool  `yaml:"on_task_failed"`
}

// Enabled reports whether a chat platform is configured.
func (n NotifyConfig) Enabled() bool {
	return n.Platform != ""
}

// NotifyTaskFailed reports whether failed tasks should be announced.
func (n NotifyConfig) NotifyTaskFailed() bool {
	return n.Enabled() && (n.OnTaskFailed == nil || *n.OnTaskFailed)
}

// DefaultAllowedPerPage is the page-size set used when none is configured.
var DefaultAllowedPerPage = []int{5, 10, 15, 20, 100}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = "/api/v1"
	}
	if !strings.HasPrefix(c.Server.BasePath, "/") {
		c.Server.BasePath = "/" + c.Server.BasePath
	}
	c.Server.BasePath = strings.TrimSuffix(c.Server.BasePath, "/")

	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			c.Database.Path = "industryview.db"
		}
	case "mysql":
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.User == "" {
			c.Database.User = "root"
		}
		if c.Database.Name == "" {
			c.Database.Name = "industryview"
		}
	}

	if c.API.BaseURL == "" {
		c.API.BaseURL = fmt.Sprintf("http://localhost:%d%s", c.Server.Port, c.Server.BasePath)
	}
	c.API.BaseURL = strings.TrimSuffix(c.API.BaseURL, "/")
	if c.API.Token == "" {
		c.API.Token = c.Server.Token
	}
	if c.API.TimeoutSec == 0 {
		c.API.TimeoutSec = 30
	}

	if len(c.Pagination.AllowedPerPage) == 0 {
		c.Pagination.AllowedPerPage = slices.Clone(DefaultAllowedPerPage)
	}
	if c.Pagination.DefaultPerPage == 0 {
		c.Pagination.DefaultPerPage = 10
	}

	if c.Notify.DigestCron == "" {
		c.Notify.DigestCron = "0 18 * * 1-5"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.ProjectID == 0 {
		errs = append(errs, "project_id is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q must be sqlite or mysql", c.Database.Driver))
	}
	if c.API.TimeoutSec < 0 {
		errs = append(errs, "api.timeout_sec must not be negative")
	}
	for i, n := range c.Pagination.AllowedPerPage {
		if n <= 0 {
			errs = append(errs, fmt.Sprintf("pagination.allowed_per_page[%d] must be positive", i))
		}
	}
	if !c.Pagination.Allows(c.Pagination.DefaultPerPage) {
		errs = append(errs, fmt.Sprintf("pagination.default_per_page %d is not in allowed_per_page", c.Pagination.DefaultPerPage))
	}
	switch c.Notify.Platform {
	case "":
	case "slack", "discord":
		if c.Notify.BotToken == "" {
			errs = append(errs, "notify.bot_token is required")
		}
		if c.Notify.Channel == "" {
			errs = append(errs, "notify.channel is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("notify.platform %q must be slack or discord", c.Notify.Platform))
	}
	if _, err := cronParser.Parse(c.Notify.DigestCron); err != nil {
		errs = append(errs, fmt.Sprintf("notify.digest_cron: %v", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
