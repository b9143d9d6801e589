package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf)

	l.Infof("hidden %d", 1)
	assert.Empty(t, buf.String())

	l.Warnf("shown %d", 2)
	assert.Contains(t, buf.String(), "WARN shown 2")

	old := l.SetLogLevel(LevelInfo)
	assert.Equal(t, LogLevelDefault, old)
	l.Infof("now visible")
	assert.Contains(t, buf.String(), "INFO now visible")

	assert.Panics(t, func() { l.SetLogLevel(LevelMax + 1) })
}
