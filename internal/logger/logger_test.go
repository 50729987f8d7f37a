package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"procure/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.LoggerConfig
		env    string
		enable zapcore.Level
		skip   zapcore.Level
	}{
		{"debug console", config.LoggerConfig{Level: "debug", Encoding: "console"}, "development", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"warn json", config.LoggerConfig{Level: "warn", Encoding: "json"}, "production", zapcore.WarnLevel, zapcore.InfoLevel},
		{"bad level falls back to info", config.LoggerConfig{Level: "loud"}, "production", zapcore.InfoLevel, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg, tt.env)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if !l.Core().Enabled(tt.enable) {
				t.Errorf("Expected %s enabled", tt.enable)
			}
			if l.Core().Enabled(tt.skip) {
				t.Errorf("Expected %s disabled", tt.skip)
			}
		})
	}
}
