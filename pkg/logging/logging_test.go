package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/chazu/brushwork/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggingConfig
		verbose bool
		want    zapcore.Level
	}{
		{"defaults", config.LoggingConfig{}, false, zapcore.InfoLevel},
		{"warn json", config.LoggingConfig{Level: "warn", Encoding: "json"}, false, zapcore.WarnLevel},
		{"console", config.LoggingConfig{Level: "error", Encoding: "console"}, false, zapcore.ErrorLevel},
		{"verbose wins", config.LoggingConfig{Level: "error"}, true, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg, tt.verbose)
			require.NoError(t, err)
			if got := logger.Level(); got != tt.want {
				t.Errorf("Level() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud"}, false)
	require.ErrorContains(t, err, "invalid log level")

	_, err = New(config.LoggingConfig{Encoding: "xml"}, false)
	require.ErrorContains(t, err, "invalid log encoding")
}
