package logger

import (
	"testing"

	"github.com/BenWassa/vox/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		cfg  config.LogConfig
		want zapcore.Level
	}{
		{config.LogConfig{Level: "debug", Format: "json"}, zapcore.DebugLevel},
		{config.LogConfig{Level: "WARN", Format: "console"}, zapcore.WarnLevel},
		{config.LogConfig{Level: "nonsense", Format: "json"}, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		l, err := New(tt.cfg)
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(tt.want))
		if tt.want > zapcore.DebugLevel {
			assert.False(t, l.Core().Enabled(tt.want-1))
		}
	}
}
