package logger_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"legal-llama/internal/logger"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want zapcore.Level
	}{
		{raw: "", want: zapcore.InfoLevel},
		{raw: "DEBUG", want: zapcore.DebugLevel},
		{raw: " warn ", want: zapcore.WarnLevel},
		{raw: "error", want: zapcore.ErrorLevel},
		{raw: "verbose", want: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			require.Equal(t, tt.want, logger.ParseLevel(tt.raw))
		})
	}
}

func TestNewWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log := logger.New("test", logger.Options{Level: "debug", FilePath: path, Production: true})
	log.Info("hello", zap.String("topic", "climate"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(data)
	require.True(t, strings.Contains(line, `"message":"hello"`), line)
	require.True(t, strings.Contains(line, `"service":"test"`), line)
	require.True(t, strings.Contains(line, `"topic":"climate"`), line)
}

func TestOrNop(t *testing.T) {
	require.NotNil(t, logger.OrNop(nil))
	l := zap.NewExample()
	require.Same(t, l, logger.OrNop(l))
}
