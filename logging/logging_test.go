package logging

import (
	"bytes"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{ServiceName: "rentals-api", Environment: "test", Level: "warn"})

	_ = level.Info(logger).Log("msg", "hidden")
	_ = level.Warn(logger).Log("msg", "shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "service=rentals-api")
	assert.Contains(t, out, "env=test")
}

func TestNewWithWriter_DefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: "bogus"})

	_ = level.Debug(logger).Log("msg", "debug-line")
	_ = level.Info(logger).Log("msg", "info-line")

	assert.NotContains(t, buf.String(), "debug-line")
	assert.Contains(t, buf.String(), "info-line")
}
