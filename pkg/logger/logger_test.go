package logger

import (
	"narraprep_backend/internal/config"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		mode, level string
		want        zapcore.Level
	}{
		{"debug", "", zapcore.DebugLevel},
		{"release", "", zapcore.InfoLevel},
		{"debug", "warn", zapcore.WarnLevel},
		{"release", "bogus", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		cfg := &config.Config{}
		cfg.Server.Mode = tt.mode
		cfg.Log.Level = tt.level
		if got := levelFor(cfg); got != tt.want {
			t.Errorf("levelFor(mode=%q, level=%q) = %v, want %v", tt.mode, tt.level, got, tt.want)
		}
	}
}
