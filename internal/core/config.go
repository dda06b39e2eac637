package core

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort           = 8080
	defaultMaxUploadBytes = 10 << 20 // "PNG, JPG до 10MB"
	defaultThumbnailWidth = 256
	defaultTimeFormat     = "02.01.2006, 15:04:05"
	defaultTimezone       = "Local"
	defaultIdleTimeout    = 2 * time.Hour
)

type Store struct {
	Type             string `yaml:"type"`
	ConnectionString string `yaml:"connectionString"`
	Address          string `yaml:"address"`
	Password         string `yaml:"password"`
	Key              string `yaml:"key"`
}

type Display struct {
	TimeFormat string `yaml:"timeFormat"`
	Timezone   string `yaml:"timezone"`
}

type Session struct {
	IdleTimeout time.Duration `yaml:"idleTimeout"`
}

type ServiceConfig struct {
	Port           int     `yaml:"port"`
	LogLevel       string  `yaml:"logLevel"`
	LogJSON        bool    `yaml:"logJSON"`
	Store          Store   `yaml:"store"`
	MaxUploadBytes int64   `yaml:"maxUploadBytes"`
	ThumbnailWidth int     `yaml:"thumbnailWidth"`
	Display        Display `yaml:"display"`
	Session        Session `yaml:"session"`

	location *time.Location
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *ServiceConfig {
	config := &ServiceConfig{}
	config.applyDefaults()
	config.location = time.Local
	return config
}

// LoadConfig loads configuration from the specified YAML file. A missing file
// yields DefaultConfig.
func LoadConfig(configPath string) (*ServiceConfig, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "path", configPath)
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var config ServiceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}
	return &config, nil
}

// Location is the time zone submission timestamps are displayed in.
func (c *ServiceConfig) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

func (c *ServiceConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Store.Type == "" {
		c.Store.Type = "memory"
	}
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = defaultMaxUploadBytes
	}
	if c.ThumbnailWidth == 0 {
		c.ThumbnailWidth = defaultThumbnailWidth
	}
	if c.Display.TimeFormat == "" {
		c.Display.TimeFormat = defaultTimeFormat
	}
	if c.Display.Timezone == "" {
		c.Display.Timezone = defaultTimezone
	}
	if c.Session.IdleTimeout == 0 {
		c.Session.IdleTimeout = defaultIdleTimeout
	}
}

func (c *ServiceConfig) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	switch c.Store.Type {
	case "memory", "sqlite":
	case "redis":
		if c.Store.Address == "" {
			return fmt.Errorf("store type redis requires an address")
		}
	default:
		return fmt.Errorf("unsupported store type: %s", c.Store.Type)
	}
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("maxUploadBytes must not be negative, got %d", c.MaxUploadBytes)
	}
	if c.ThumbnailWidth < 0 {
		return fmt.Errorf("thumbnailWidth must not be negative, got %d", c.ThumbnailWidth)
	}
	if c.Session.IdleTimeout < 0 {
		return fmt.Errorf("session idleTimeout must not be negative, got %s", c.Session.IdleTimeout)
	}

	location, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return fmt.Errorf("unknown display timezone %q: %w", c.Display.Timezone, err)
	}
	c.location = location
	return nil
}
