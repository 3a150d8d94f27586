package main

import (
	"path/filepath"
	"testing"

	"github.com/medipredict/forecast-dashboard/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name     string
		conf     config.LoggingConfig
		override string
		wantErr  bool
	}{
		{name: "defaults", conf: config.LoggingConfig{}},
		{name: "console debug", conf: config.LoggingConfig{Level: "debug", Format: "console"}},
		{name: "override wins", conf: config.LoggingConfig{Level: "bogus"}, override: "warn"},
		{name: "invalid level", conf: config.LoggingConfig{Level: "loud"}, wantErr: true},
		{name: "invalid format", conf: config.LoggingConfig{Format: "xml"}, wantErr: true},
		{name: "output file", conf: config.LoggingConfig{OutputFile: filepath.Join(t.TempDir(), "logs", "dashboard.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.conf, tt.override)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("initializeLogger() error = %v", err)
			}
			_ = logger.Sync()
		})
	}
}

func TestMergeLogging(t *testing.T) {
	base := config.LoggingConfig{Level: "info", Format: "json", OutputFile: "a.log"}
	got := mergeLogging(base, config.LoggingConfig{Level: "debug"})

	if got.Level != "debug" || got.Format != "json" || got.OutputFile != "a.log" {
		t.Fatalf("unexpected merged logging config %+v", got)
	}
}
