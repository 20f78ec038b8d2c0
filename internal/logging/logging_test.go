package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Out: &buf})

	log.Info().Msg("dropped")
	log.Warn().Str("component", "engine").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "engine", entry["component"])
	assert.Equal(t, "warn", entry["level"])
}

func TestNew_Pretty(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Pretty: true, Out: &buf})
	log.Debug().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}
