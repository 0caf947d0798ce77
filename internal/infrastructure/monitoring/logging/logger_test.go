package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, Field{Key: "k", Value: "v"}, String("k", "v"))
	assert.Equal(t, Field{Key: "n", Value: 3}, Int("n", 3))
	assert.Equal(t, Field{Key: "x", Value: 0.5}, Float64("x", 0.5))
	assert.Equal(t, Field{Key: "b", Value: true}, Bool("b", true))
	assert.Equal(t, Field{Key: "d", Value: time.Second}, Duration("d", time.Second))
	assert.Equal(t, Field{Key: "error", Value: "<nil>"}, Err(nil))
}

func TestZapLogger_EmitsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel) // capture everything
	log := NewLoggerFromCore(core)

	log.Info("fingerprint batch done",
		Int("processed", 120),
		Int("skipped", 3),
		Float64("elapsed_s", 1.5),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "fingerprint batch done", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 120, fields["processed"])
	assert.EqualValues(t, 3, fields["skipped"])
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewLoggerFromCore(core).Named("bias").With(String("run_id", "abc"))

	log.Warn("empty inactive-train group")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "bias", entries[0].LoggerName)
	assert.Equal(t, "abc", entries[0].ContextMap()["run_id"])
}

func TestNewLogger_Defaults(t *testing.T) {
	log, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	require.NotNil(t, log)
	// Must not panic.
	log.Debug("suppressed at default info level")
}

func TestDefaultLogger(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	nop := NewNopLogger()
	SetDefault(nop)
	assert.Equal(t, nop, Default())

	// nil must be ignored.
	SetDefault(nil)
	assert.Equal(t, nop, Default())
}
