package logger

import (
	"testing"
	"time"

	"github.com/finkraft/expense-exporter/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	t.Run("console logger", func(t *testing.T) {
		log, err := New(&config.LogConfig{Level: "debug", Format: "console", Output: "stdout"})
		require.NoError(t, err)
		assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("json logger defaults to info", func(t *testing.T) {
		log, err := New(&config.LogConfig{Level: "nonsense", Format: "json", Output: "stderr"})
		require.NoError(t, err)
		assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
		assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARNING"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestGormLoggerLogMode(t *testing.T) {
	log, err := NewForEnvironment("production")
	require.NoError(t, err)

	gl := NewGormLogger(log, gormlogger.Warn)
	silenced := gl.LogMode(gormlogger.Silent)

	// LogMode returns a copy; the original keeps its level.
	assert.NotSame(t, gl, silenced)
	assert.Equal(t, gormlogger.Warn, gl.logLevel)
	assert.Equal(t, 200*time.Millisecond, gl.slowThreshold)
}
