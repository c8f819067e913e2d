package diagnostics

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogUsesSeverityLevel(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	Diagnostic{
		Severity: Warn,
		Code:     InputDropped,
		Summary:  "input queue full",
		Evidence: map[string]any{"kind": "pointer"},
	}.Log(l)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "warn", got["level"])
	assert.Equal(t, "INPUT.DROPPED", got["code"])
	assert.Equal(t, "input queue full", got["message"])
	assert.Equal(t, map[string]any{"kind": "pointer"}, got["evidence"])
}

func TestJSONShape(t *testing.T) {
	b, err := json.Marshal(Diagnostic{Severity: Info, Code: LEDFallback, Summary: "console"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"severity":"info","code":"LED.FALLBACK","summary":"console"}`, string(b))
}
