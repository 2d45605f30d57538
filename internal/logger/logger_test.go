package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("production logger honours level", func(t *testing.T) {
		l, err := New(true, "warn")
		require.NoError(t, err)
		assert.False(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Desugar().Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		l, err := New(false, "loud")
		require.NoError(t, err)
		assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
		assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
	})
}

func TestNop(t *testing.T) {
	assert.NotNil(t, Nop())
}
