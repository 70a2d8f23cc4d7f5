package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJSONLoggerTagsComponents(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{LogLevel: zerolog.InfoLevel, Type: JSONLogger, Output: &buf})
	t.Cleanup(func() { Init(Options{LogLevel: zerolog.Disabled, Output: &bytes.Buffer{}}) })

	Engine.Info().Uint64("round_id", 7).Msg("round opened")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "engine", line["component"])
	assert.Equal(t, "round opened", line["message"])
	assert.EqualValues(t, 7, line["round_id"])
}

func TestInitRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{LogLevel: zerolog.WarnLevel, Type: JSONLogger, Output: &buf})
	t.Cleanup(func() { Init(Options{LogLevel: zerolog.Disabled, Output: &bytes.Buffer{}}) })

	Store.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	Store.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLoggerType(t *testing.T) {
	typ, err := ParseLoggerType("json")
	require.NoError(t, err)
	assert.Equal(t, JSONLogger, typ)

	typ, err = ParseLoggerType("")
	require.NoError(t, err)
	assert.Equal(t, ConsoleLogger, typ)

	_, err = ParseLoggerType("xml")
	assert.Error(t, err)
}
