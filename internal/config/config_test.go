package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/medipredict/forecast-dashboard/pkg/constants"
)

const sampleConfig = `
backend:
  url: http://forecast-api:5000/
  timeout: 90s
charts:
  width: 800
  height: 300
  format: SVG
session:
  ttl: 30m
logging:
  level: debug
  format: console
  outputFile: logs/dashboard.log
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Sample config file",
			configPath: writeConfig(t, sampleConfig),
		},
		{
			name:       "No config file",
			configPath: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	config, err := LoadConfiguration(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.Backend.URL != "http://forecast-api:5000" {
		t.Errorf("Expected trailing slash trimmed from backend url, got %q", config.Backend.URL)
	}
	if config.Backend.Timeout != 90*time.Second {
		t.Errorf("Expected backend timeout 90s, got %v", config.Backend.Timeout)
	}
	if config.Charts.Width != 800 || config.Charts.Height != 300 {
		t.Errorf("Expected chart size 800x300, got %dx%d", config.Charts.Width, config.Charts.Height)
	}
	if config.Charts.Format != constants.ChartFormatSVG {
		t.Errorf("Expected chart format svg, got %q", config.Charts.Format)
	}
	if config.Session.TTL != 30*time.Minute {
		t.Errorf("Expected session ttl 30m, got %v", config.Session.TTL)
	}
	if config.Logging.Level != "debug" || config.Logging.Format != "console" {
		t.Errorf("Unexpected logging config %+v", config.Logging)
	}
	if config.Logging.OutputFile != "logs/dashboard.log" {
		t.Errorf("Expected log output file, got %q", config.Logging.OutputFile)
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	config, err := LoadConfigurationFromReader(strings.NewReader("logging:\n  level: info\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	if config.Backend.URL != constants.DefaultBackendURL {
		t.Errorf("Expected default backend url, got %q", config.Backend.URL)
	}
	if config.Backend.Timeout != constants.DefaultBackendTimeout {
		t.Errorf("Expected default timeout, got %v", config.Backend.Timeout)
	}
	if config.Charts.Width != constants.DefaultChartWidth || config.Charts.Height != constants.DefaultChartHeight {
		t.Errorf("Expected default chart size, got %dx%d", config.Charts.Width, config.Charts.Height)
	}
	if config.Charts.Format != constants.ChartFormatPNG {
		t.Errorf("Expected default chart format png, got %q", config.Charts.Format)
	}
	if config.Session.TTL != constants.DefaultSessionTTL {
		t.Errorf("Expected default session ttl, got %v", config.Session.TTL)
	}
}

func TestLoadConfigurationEnvironmentOverride(t *testing.T) {
	t.Setenv("DASHBOARD_BACKEND_URL", "https://models.example.org")
	t.Setenv("DASHBOARD_BACKEND_TIMEOUT", "45s")

	config, err := LoadConfiguration(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if config.Backend.URL != "https://models.example.org" {
		t.Errorf("Expected env backend url, got %q", config.Backend.URL)
	}
	if config.Backend.Timeout != 45*time.Second {
		t.Errorf("Expected env timeout 45s, got %v", config.Backend.Timeout)
	}
}

func TestLoadConfigurationInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed yaml", content: "backend: [unterminated"},
		{name: "bad backend url", content: "backend:\n  url: ftp://models\n"},
		{name: "zero timeout", content: "backend:\n  timeout: 0s\n"},
		{name: "bad chart format", content: "charts:\n  format: gif\n"},
		{name: "negative chart size", content: "charts:\n  width: -1\n"},
		{name: "zero session ttl", content: "session:\n  ttl: 0s\n"},
		{name: "bad log format", content: "logging:\n  format: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfigurationFromReader(strings.NewReader(tt.content)); err == nil {
				t.Fatalf("expected error for %s", tt.name)
			}
		})
	}
}

func TestValidateConfigurationWarnings(t *testing.T) {
	config := &Configuration{
		Backend: BackendConfig{URL: constants.DefaultBackendURL, Timeout: time.Second},
		Session: SessionConfig{TTL: 10 * time.Second},
	}

	warnings := config.ValidateConfiguration()
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}

	config.Backend.Timeout = time.Minute
	config.Session.TTL = time.Hour
	if warnings := config.ValidateConfiguration(); warnings != nil {
		t.Fatalf("expected no warnings, got %v", warnings)
	}

	config.Backend.Timeout = 2 * time.Hour
	if warnings := config.ValidateConfiguration(); len(warnings) != 1 {
		t.Fatalf("expected a warning for a timeout longer than the session ttl, got %v", warnings)
	}
}
