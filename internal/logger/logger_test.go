package logger

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevels(t *testing.T) {
	t.Run("empty enables all", func(t *testing.T) {
		set, err := ParseLevels(nil)
		require.NoError(t, err)
		assert.Equal(t, "DEBUG,INFO,WARNING,ERROR,CRITICAL", set.String())
	})

	t.Run("aliases", func(t *testing.T) {
		set, err := ParseLevels([]string{"WARN", "crit"})
		require.NoError(t, err)
		assert.True(t, set.Enabled(slog.LevelWarn))
		assert.True(t, set.Enabled(LevelCritical))
		assert.False(t, set.Enabled(slog.LevelError))
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := ParseLevels([]string{"verbose"})
		assert.Error(t, err)
	})
}

func TestLoggerLevelSet(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Levels: []string{"warning", "critical"}, Console: &buf})
	require.NoError(t, err)

	l.Debug("debug line")
	l.Info("info line")
	l.Warning("warning line", "host", "10.0.0.1")
	l.Error("error line")
	l.Critical("critical line")

	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.NotContains(t, out, "info line")
	assert.NotContains(t, out, "error line")
	assert.Contains(t, out, "warning line")
	assert.Contains(t, out, "critical line")
	assert.Contains(t, out, "level=WARNING")
	assert.Contains(t, out, "level=CRITICAL")
	assert.Contains(t, out, "host=10.0.0.1")
}

func TestLoggerRecordMetadata(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Console: &buf})
	require.NoError(t, err)

	l.Info("hello")

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "run_id="+l.RunID())
	assert.Contains(t, line, "time=")
	assert.Contains(t, line, "msg=hello")
	assert.Contains(t, line, "TestLoggerRecordMetadata:logger_test.go:")
	assert.Len(t, l.RunID(), 36)
}

func TestLoggerFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	l, err := New(Config{Name: "inv", Dir: dir, Console: &console})
	require.NoError(t, err)

	l.Info("to both")
	require.NoError(t, l.Close())

	require.NotEmpty(t, l.Path())
	assert.True(t, strings.HasPrefix(l.Path(), dir))
	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, console.String(), "to both")
}

func TestLoggerFileFallback(t *testing.T) {
	var console bytes.Buffer
	l, err := New(Config{Dir: "/nonexistent/dir/for/logs", Console: &console})
	require.NoError(t, err)

	assert.Empty(t, l.Path())
	assert.Contains(t, console.String(), "log file unavailable")
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Critical("dropped")
	assert.False(t, l.Enabled(LevelCritical))
	assert.NoError(t, l.Close())
}
