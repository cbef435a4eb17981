package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriterLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "spawn", LevelDebug)

	l.Info("command finished", Fields{"exit_code": 0})

	line := buf.String()
	assert.Contains(t, line, " INFO  [spawn] command finished obj={\"exit_code\":0}")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestWriterLoggerMinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "", LevelWarn)

	l.Debug("hidden", nil)
	l.Info("hidden", nil)
	l.Warn("shown", nil)
	l.Error("shown too", nil)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN  shown")
	assert.Contains(t, out, "ERROR shown too")
}

func TestWriterLoggerUnmarshalableObject(t *testing.T) {
	var buf bytes.Buffer
	NewWriterLogger(&buf).Warn("odd payload", map[string]any{"fn": func() {}})

	assert.Contains(t, buf.String(), "odd payload obj=")
}

func TestHelpersAreNilSafe(t *testing.T) {
	Debug(true, nil, "x", nil)
	Info(nil, "x", nil)
	Warn(nil, "x", nil)
	Error(nil, "x", nil)

	var buf bytes.Buffer
	l := NewWriterLogger(&buf)
	Debug(false, l, "suppressed", nil)
	Debugf(true, l, "cwd=%s", "/srv")
	assert.NotContains(t, buf.String(), "suppressed")
	assert.Contains(t, buf.String(), "cwd=/srv")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}
