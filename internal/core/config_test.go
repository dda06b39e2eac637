package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}
	return configPath
}

func TestLoadConfig_Success(t *testing.T) {
	configPath := writeConfig(t, `port: 9090
logLevel: debug
store:
  type: sqlite
  connectionString: ":memory:"
maxUploadBytes: 1048576
thumbnailWidth: 128
display:
  timeFormat: "2006-01-02 15:04"
  timezone: Europe/Moscow
session:
  idleTimeout: 30m
`)

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Port != 9090 {
		t.Errorf("Expected port to be 9090, got %d", config.Port)
	}
	if config.Store.Type != "sqlite" || config.Store.ConnectionString != ":memory:" {
		t.Errorf("unexpected store config: %+v", config.Store)
	}
	if config.MaxUploadBytes != 1048576 || config.ThumbnailWidth != 128 {
		t.Errorf("unexpected sizes: max=%d thumb=%d", config.MaxUploadBytes, config.ThumbnailWidth)
	}
	if config.Session.IdleTimeout != 30*time.Minute {
		t.Errorf("Expected idleTimeout 30m, got %s", config.Session.IdleTimeout)
	}
	if config.Location().String() != "Europe/Moscow" {
		t.Errorf("Expected location Europe/Moscow, got %s", config.Location())
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "port: 8081\n"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Store.Type != "memory" {
		t.Errorf("Expected default store memory, got %q", config.Store.Type)
	}
	if config.MaxUploadBytes != defaultMaxUploadBytes {
		t.Errorf("Expected default maxUploadBytes %d, got %d", defaultMaxUploadBytes, config.MaxUploadBytes)
	}
	if config.Display.TimeFormat != defaultTimeFormat {
		t.Errorf("Expected default time format, got %q", config.Display.TimeFormat)
	}
}

func TestLoadConfig_FileNotFoundUsesDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Port != defaultPort {
		t.Errorf("Expected default port %d, got %d", defaultPort, config.Port)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "port: [1, 2"},
		{"unknown store", "store:\n  type: postgres\n"},
		{"redis without address", "store:\n  type: redis\n"},
		{"negative upload size", "maxUploadBytes: -1\n"},
		{"unknown timezone", "display:\n  timezone: Mars/Olympus\n"},
		{"port out of range", "port: 70000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatalf("expected error, got config %+v", config)
			}
			if config != nil {
				t.Error("Expected config to be nil on error")
			}
		})
	}
}

func TestLoadConfig_NegativeSizes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"upload size", "maxUploadBytes: -1\n", "maxUploadBytes must not be negative"},
		{"thumbnail width", "thumbnailWidth: -5\n", "thumbnailWidth must not be negative"},
		{"idle timeout", "session:\n  idleTimeout: -1m\n", "idleTimeout must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("LoadConfig error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfig_ZeroSizesUseDefaults(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "maxUploadBytes: 0\nthumbnailWidth: 0\n"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.MaxUploadBytes != defaultMaxUploadBytes || config.ThumbnailWidth != defaultThumbnailWidth {
		t.Fatalf("zero sizes = (%d, %d), want defaults (%d, %d)",
			config.MaxUploadBytes, config.ThumbnailWidth, defaultMaxUploadBytes, defaultThumbnailWidth)
	}
}
