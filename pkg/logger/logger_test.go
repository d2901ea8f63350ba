package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeWritesToBuffer(t *testing.T) {
	var buf bytes.Buffer

	logData, err := New().FromBuffer(&buf).Make()
	require.NoError(t, err)

	logData.Logger.Info().Str("zone", "Reminders").Msg("snapshot refreshed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "snapshot refreshed", line["message"])
	assert.Equal(t, "Reminders", line["zone"])
	assert.NotEmpty(t, line["time"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer

	logData, err := New().FromBuffer(&buf).WithLevel(zerolog.WarnLevel).Make()
	require.NoError(t, err)

	logData.Logger.Debug().Msg("dropped")
	assert.Zero(t, buf.Len())

	logData.Logger.Warn().Msg("kept")
	assert.NotZero(t, buf.Len())
}
