package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"INFO", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"", logrus.WarnLevel},
		{"chatty", logrus.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewJSONFormat(t *testing.T) {
	buf := new(bytes.Buffer)
	log := New(Options{Level: "info", Format: "json", Out: buf})

	WithComponent(log, "discovery").WithField(FieldPort, 6112).Info("found port")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "found port", entry["msg"])
	assert.Equal(t, "discovery", entry[FieldComponent])
	assert.Equal(t, float64(6112), entry[FieldPort])
	assert.NotContains(t, entry, "time")
}

func TestAutoFormatFallsBackToJSONOffTerminal(t *testing.T) {
	buf := new(bytes.Buffer)
	log := New(Options{Level: "warn", Out: buf})
	log.Warn("hello")
	assert.True(t, json.Valid(buf.Bytes()), "expected JSON, got %q", buf.String())
}

func TestLevelFilters(t *testing.T) {
	buf := new(bytes.Buffer)
	log := New(Options{Level: "warn", Format: "text", Out: buf})
	log.Debug("hidden")
	log.Info("hidden too")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestOrDiscard(t *testing.T) {
	l := OrDiscard(nil)
	require.NotNil(t, l)
	l.Error("goes nowhere")

	own := Discard()
	assert.Same(t, own, OrDiscard(own))
}
