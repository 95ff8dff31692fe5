package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerFunctions(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log = newLogger() })

	Init("invalid") // should default to info
	assert.Equal(t, "info", Get().GetLevel().String())

	Debugf("%s", "debugf")
	Warnf("%s", "warnf")

	out := buf.String()
	assert.NotContains(t, out, "msg=debugf")
	assert.Contains(t, out, "msg=warnf")

	Init("debug")
	Debugf("%s", "visible")
	assert.Contains(t, buf.String(), "msg=visible")
}

func TestInit(t *testing.T) {
	t.Cleanup(func() { log = newLogger() })

	tests := []struct {
		in   string
		want string
	}{
		{"debug", "debug"},
		{" WARN ", "warning"},
		{"error", "error"},
		{"", "info"},
		{"verbose", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			Init(tt.in)
			assert.Equal(t, tt.want, Get().GetLevel().String())
			assert.Same(t, log, Get())
		})
	}
}
