package script

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-inception/internal/orchestrator"
	"github.com/coreman2200/funtimes-inception/internal/scene"
)

const doc = `
duration: 2
steps:
  - at: 1.0
    close: true
  - at: 0.5
    select: 3
  - at: 0
    resize: [800, 600]
  - at: 0.1
    pointer: [400, 300]
`

func TestParseSortsSteps(t *testing.T) {
	s, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, s.Steps, 4)
	var got []orchestrator.EventKind
	for _, st := range s.Steps {
		ev, ok := st.Event()
		require.True(t, ok)
		got = append(got, ev.Kind)
	}
	assert.Equal(t, []orchestrator.EventKind{
		orchestrator.EventResize, orchestrator.EventPointer, orchestrator.EventSelect, orchestrator.EventClose,
	}, got)
}

func TestParseJSONAndDefaults(t *testing.T) {
	s, err := Parse([]byte(`{"steps":[{"at":4,"select":1}]}`))
	require.NoError(t, err)
	assert.Equal(t, 7.0, s.Duration)

	_, err = Parse([]byte(`steps: []`))
	assert.True(t, errors.Is(err, ErrEmpty))
}

func TestRunPlaysSelections(t *testing.T) {
	s, err := Parse([]byte(doc))
	require.NoError(t, err)
	o, err := orchestrator.New(orchestrator.Options{Log: zerolog.Nop()})
	require.NoError(t, err)

	var panels []int
	n := Run(o, s, 20, func(f scene.Frame) { panels = append(panels, f.Panel) })
	assert.Equal(t, 41, n)
	assert.Equal(t, scene.NoPanel, panels[9])
	assert.Equal(t, 3, panels[10])
	assert.Equal(t, 3, panels[19])
	assert.Equal(t, scene.NoPanel, panels[20])
	assert.False(t, o.Mounted())
}
