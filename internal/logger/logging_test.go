package logger

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewToWritesPrefix(t *testing.T) {
	prev := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(prev)

	var buf bytes.Buffer
	l := NewTo(&buf, "ipc")
	l.Info("ready", "pid", 42)
	assert.Contains(t, buf.String(), "ipc")
	assert.Contains(t, buf.String(), "ready")
	assert.Contains(t, buf.String(), "pid=42")

	buf.Reset()
	l.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestParseFormatter(t *testing.T) {
	assert.Equal(t, log.JSONFormatter, ParseFormatter("json"))
	assert.Equal(t, log.LogfmtFormatter, ParseFormatter("logfmt"))
	assert.Equal(t, log.TextFormatter, ParseFormatter("anything"))
}

func TestSetFormatterAppliesToNewLoggers(t *testing.T) {
	SetFormatter(log.JSONFormatter)
	defer SetFormatter(log.TextFormatter)

	var buf bytes.Buffer
	NewTo(&buf, "http").Warn("listening", "addr", ":5000")
	assert.Contains(t, buf.String(), `"addr":":5000"`)
	assert.Contains(t, buf.String(), `"prefix":"http"`)
}
