package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		verbosity  int
	}{
		{name: "JSON output mode", jsonOutput: true, verbosity: 0},
		{name: "Console output mode", jsonOutput: false, verbosity: 1},
		{name: "Console debug mode", jsonOutput: false, verbosity: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			JSONOutput = false

			require.NoError(t, Initialize(tt.jsonOutput, tt.verbosity))
			require.NotNil(t, Logger)
			assert.Equal(t, tt.jsonOutput, JSONOutput)

			want := VerbosityToLevel(tt.verbosity)
			assert.True(t, Logger.Desugar().Core().Enabled(want))
			if want > zapcore.DebugLevel {
				assert.False(t, Logger.Desugar().Core().Enabled(want-1))
			}

			Cleanup()
			Logger = zap.NewNop().Sugar()
		})
	}
}

func TestVerbosityToLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(-1))
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(VerbosityUser))
	assert.Equal(t, zapcore.InfoLevel, VerbosityToLevel(VerbosityInfo))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(VerbosityDebug))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(7))
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "User", LevelName(0))
	assert.Equal(t, "Info (-v)", LevelName(1))
	assert.Equal(t, "Debug (-vv)", LevelName(2))
	assert.Equal(t, "Trace (-vvv)", LevelName(5))
	assert.True(t, ShouldLogTrace(3))
	assert.False(t, ShouldLogTrace(2))
}

func TestCleanupWithNilLogger(t *testing.T) {
	Logger = nil
	defer func() { Logger = zap.NewNop().Sugar() }()

	assert.NotPanics(t, func() {
		Cleanup()
		Infow("test", "key", "value")
		Warnw("test", "key", "value")
		Errorw("test", "key", "value")
		Debugw("test", "key", "value")
	})
}

func TestPackageFunctionsWriteToGlobalLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Logger = zap.New(core).Sugar()
	defer func() { Logger = zap.NewNop().Sugar() }()

	Infow("integrated", FieldCount, 3)
	Warnw("skipped row", FieldSource, "terms", FieldLine, 4)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "integrated", entries[0].Message)
	assert.Equal(t, int64(3), entries[0].ContextMap()[FieldCount])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "terms", entries[1].ContextMap()[FieldSource])
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	l := zap.NewExample().Sugar()
	assert.Same(t, l, OrNop(l))
}

func TestComponentLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Logger = zap.New(core).Sugar()
	defer func() { Logger = zap.NewNop().Sugar() }()

	ComponentLogger("ixgest.fasta").Info("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "ixgest.fasta", logs.All()[0].LoggerName)
}
