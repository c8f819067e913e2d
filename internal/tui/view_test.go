package tui

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-inception/internal/orchestrator"
	"github.com/coreman2200/funtimes-inception/internal/scene"
	"github.com/coreman2200/funtimes-inception/internal/topics"
)

type recorder struct{ events []orchestrator.Event }

func (r *recorder) Post(ev orchestrator.Event) bool {
	r.events = append(r.events, ev)
	return true
}

func newView(t *testing.T) (*View, tcell.SimulationScreen, *recorder) {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(60, 20)
	t.Cleanup(s.Fini)
	rec := &recorder{}
	return New(s, topics.Default(), rec), s, rec
}

func testFrame() scene.Frame {
	sc := scene.New(scene.Options{
		Layout:     scene.Layout{Count: 12, Radius: 4, AngleStep: 0.4, VerticalStep: 0.3},
		CameraRest: scene.Vec3{Y: 2, Z: 10},
		FOV:        60,
		StarSize:   1,
	})
	return sc.Snapshot(1, 0.5)
}

func readRow(s tcell.Screen, x, y, n int) string {
	out := make([]rune, 0, n)
	for i := 0; i < n; i++ {
		r, _, _, _ := s.GetContent(x+i, y)
		out = append(out, r)
	}
	return string(out)
}

func TestPublishPlotsEveryStair(t *testing.T) {
	v, s, _ := newView(t)
	require.NoError(t, v.Publish(testFrame()))
	require.Len(t, v.hits, 12)
	for i, c := range v.hits {
		r, _, _, _ := s.GetContent(c.x, c.y)
		assert.Equal(t, '■', r, "stair %d", i)
	}
	assert.Equal(t, "t=", readRow(s, 0, 0, 2))
}

func TestClickSelectsStair(t *testing.T) {
	v, _, rec := newView(t)
	require.NoError(t, v.Publish(testFrame()))
	c := v.hits[0]

	assert.True(t, v.HandleEvent(tcell.NewEventMouse(c.x, c.y, tcell.Button1, tcell.ModNone)))
	require.Len(t, rec.events, 2)
	assert.Equal(t, orchestrator.PointerEvent(float64(c.x), float64(c.y)), rec.events[0])
	assert.Equal(t, orchestrator.SelectEvent(0), rec.events[1])

	assert.True(t, v.HandleEvent(tcell.NewEventMouse(0, 19, tcell.ButtonNone, tcell.ModNone)))
	assert.Len(t, rec.events, 3)
}

func TestDragSelectsOnlyOnPress(t *testing.T) {
	v, _, rec := newView(t)
	require.NoError(t, v.Publish(testFrame()))
	c := v.hits[0]

	selects := func() int {
		n := 0
		for _, ev := range rec.events {
			if ev.Kind == orchestrator.EventSelect {
				n++
			}
		}
		return n
	}
	for i := 0; i < 5; i++ {
		v.HandleEvent(tcell.NewEventMouse(c.x, c.y, tcell.Button1, tcell.ModNone))
	}
	assert.Equal(t, 1, selects())

	v.HandleEvent(tcell.NewEventMouse(c.x, c.y, tcell.ButtonNone, tcell.ModNone))
	v.HandleEvent(tcell.NewEventMouse(c.x, c.y, tcell.Button1, tcell.ModNone))
	assert.Equal(t, 2, selects())
}

func TestKeys(t *testing.T) {
	v, _, rec := newView(t)
	assert.True(t, v.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.True(t, v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, '7', tcell.ModNone)))
	assert.Equal(t, []orchestrator.Event{orchestrator.CloseEvent(), orchestrator.SelectEvent(7)}, rec.events)
	assert.False(t, v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
}

func TestPanelShowsTopic(t *testing.T) {
	v, s, _ := newView(t)
	v.Open(3)
	require.NoError(t, v.Publish(testFrame()))
	assert.Equal(t, "Internships", readRow(s, 60*2/3+3, 1, len("Internships")))

	v.Close()
	require.NoError(t, v.Publish(testFrame()))
	assert.NotEqual(t, "Internships", readRow(s, 60*2/3+3, 1, len("Internships")))
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"Email me", "at", "example"}, wrap("Email me at example", 8))
	assert.Nil(t, wrap("", 10))
}
