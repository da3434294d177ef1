package config_test

import (
	"bytes"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/digione/xnatsync/pkg/cli/config"
)

func TestLogger_Configure(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{
			name:   "Valid level: debug",
			level:  "debug",
			format: "text",
		},
		{
			name:   "Valid level: DEBUG (case insensitive)",
			level:  "DEBUG",
			format: "text",
		},
		{
			name:   "Valid level: warn with console format",
			level:  "warn",
			format: "console",
		},
		{
			name:   "Valid level: ERROR with json format",
			level:  "ERROR",
			format: "json",
		},
		{
			name:   "Empty format falls back to console",
			level:  "info",
			format: "",
		},
		{
			name:    "Invalid level: invalid",
			level:   "invalid",
			format:  "text",
			wantErr: true,
		},
		{
			name:    "Invalid level: empty string",
			level:   "",
			format:  "text",
			wantErr: true,
		},
		{
			name:    "Invalid format",
			level:   "info",
			format:  "yaml",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := &config.Logger{
				Level:  tt.level,
				Format: tt.format,
				Output: &buf,
			}

			result, err := logger.Configure()
			if (err != nil) != tt.wantErr {
				t.Errorf("Configure() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && result == nil {
				t.Error("Configure() returned nil logger for valid input")
			}
		})
	}
}

func TestLogger_Configure_LevelBehavior(t *testing.T) {
	var buf bytes.Buffer
	logger := &config.Logger{Level: "warn", Format: "text", Output: &buf}

	result, err := logger.Configure()
	gt.NoError(t, err).Required()

	result.Info("info message")
	result.Warn("warn message")

	gt.String(t, buf.String()).NotContains("info message")
	gt.String(t, buf.String()).Contains("warn message")
}

func TestLogger_Configure_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := &config.Logger{Level: "info", Format: "json", Output: &buf}

	result, err := logger.Configure()
	gt.NoError(t, err).Required()

	result.Info("config",
		"xnat", config.XNAT{URL: "https://xnat.example.org", User: "admin", Password: "p4ssw0rd"},
		"sentry", config.Sentry{DSN: "https://key@sentry.example.org/1", Env: "test"},
	)

	gt.String(t, buf.String()).Contains("https://xnat.example.org")
	gt.String(t, buf.String()).NotContains("p4ssw0rd")
	gt.String(t, buf.String()).NotContains("key@sentry.example.org")
}

func TestLogger_Flags(t *testing.T) {
	logger := &config.Logger{}
	flags := logger.Flags()

	gt.A(t, flags).Length(2)

	flagNames := make(map[string]bool)
	for _, flag := range flags {
		if f, ok := flag.(interface{ Names() []string }); ok && len(f.Names()) > 0 {
			flagNames[f.Names()[0]] = true
		}
	}

	gt.True(t, flagNames["log-level"])
	gt.True(t, flagNames["log-format"])
}
