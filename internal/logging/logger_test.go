package logging

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, enabled map[string]bool) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	SetBase(zap.New(core), enabled)
	t.Cleanup(func() { SetBase(nil, nil) })
	return logs
}

func TestGet_DefaultIsSilent(t *testing.T) {
	SetBase(nil, nil)
	// Must not panic and must not write anywhere.
	Get(CategoryAssembler).Info("hello %s", "world")
	assert.Equal(t, CategoryAssembler, Get(CategoryAssembler).Category())
}

func TestGet_WritesNamedEntries(t *testing.T) {
	logs := observe(t, nil)

	Get(CategoryFormat).Info("rendered %d slots", 3)
	Get(CategoryValidate).Warn("issue: %s", "missing USER")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "format", entries[0].LoggerName)
	assert.Equal(t, "rendered 3 slots", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestGet_CategoryToggle(t *testing.T) {
	logs := observe(t, map[string]bool{"naming": false})

	Get(CategoryNaming).Info("suppressed")
	Get(CategoryStore).Info("kept")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Message)
	assert.False(t, IsCategoryEnabled(CategoryNaming))
	assert.True(t, IsCategoryEnabled(CategoryStore))
}

func TestWithRequestID(t *testing.T) {
	logs := observe(t, nil)

	WithRequestID(CategoryAssembler, "req-1").Info("state %s", "naming")

	entries := logs.FilterField(zap.String("request_id", "req-1")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "state naming", entries[0].Message)
}

func TestTimer(t *testing.T) {
	logs := observe(t, nil)

	timer := StartTimer(CategoryTemplates, "load")
	elapsed := timer.Stop()
	assert.GreaterOrEqual(t, elapsed, time.Duration(0))

	slow := &Timer{category: CategoryTemplates, operation: "slow op", start: time.Now().Add(-time.Second)}
	slow.StopWithThreshold(time.Millisecond)

	assert.Equal(t, 1, logs.FilterMessage("load completed").Len())
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestAudit(t *testing.T) {
	logs := observe(t, nil)

	a := Audit("req-9")
	a.GenerateStart(42, 1)
	a.GenerateFailed("manifest", "pre-render", errors.New("boom"))

	entries := logs.FilterLoggerName("audit").All()
	require.Len(t, entries, 2)
	assert.Equal(t, string(AuditGenerateStart), entries[0].ContextMap()["event"])
	assert.Equal(t, "req-9", entries[1].ContextMap()["request_id"])
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	} {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestInitialize_File(t *testing.T) {
	t.Cleanup(func() { SetBase(nil, nil) })
	path := filepath.Join(t.TempDir(), "logs", "stratforge.log")

	require.NoError(t, Initialize(Options{Level: "debug", Format: "json", File: path}))
	Get(CategoryCLI).Info("to file")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
	assert.Contains(t, string(data), `"logger":"cli"`)
}

func TestInitialize_RejectsUnknownFormat(t *testing.T) {
	t.Cleanup(func() { SetBase(nil, nil) })
	assert.Error(t, Initialize(Options{Format: "xml"}))
	assert.Error(t, Initialize(Options{Level: "loud"}))
}
