// Package config defines the dashboard configuration and loads it from YAML
// and the environment.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/medipredict/forecast-dashboard/pkg/constants"
	"github.com/medipredict/forecast-dashboard/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for the forecast dashboard.
type Configuration struct {
	Backend BackendConfig `yaml:"backend"`
	Charts  ChartConfig   `yaml:"charts"`
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// BackendConfig locates the forecasting backend.
type BackendConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ChartConfig controls how charts are drawn.
type ChartConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Format string `yaml:"format"` // png, svg
}

// SessionConfig controls page session lifetime.
type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("backend.url", constants.DefaultBackendURL)
	v.SetDefault("backend.timeout", constants.DefaultBackendTimeout)
	v.SetDefault("charts.width", constants.DefaultChartWidth)
	v.SetDefault("charts.height", constants.DefaultChartHeight)
	v.SetDefault("charts.format", constants.ChartFormatPNG)
	v.SetDefault("session.ttl", constants.DefaultSessionTTL)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. An empty path yields the defaults with environment
// overrides applied.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file, %s", err)
		}
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.Backend.URL = strings.TrimRight(strings.TrimSpace(configuration.Backend.URL), "/")
	configuration.Charts.Format = strings.ToLower(strings.TrimSpace(configuration.Charts.Format))

	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Validate rejects settings the dashboard cannot run with.
func (c *Configuration) Validate() error {
	if err := validation.ValidateBackendURL(c.Backend.URL); err != nil {
		return err
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive, got %s", c.Backend.Timeout)
	}
	if err := validation.ValidateChartSize(c.Charts.Width, c.Charts.Height); err != nil {
		return err
	}
	if err := validation.ValidateChartFormat(c.Charts.Format); err != nil {
		return err
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.Session.TTL)
	}
	return validation.ValidateLogFormat(c.Logging.Format)
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	return validation.ValidateConfiguration(c.Backend.Timeout, c.Session.TTL)
}
