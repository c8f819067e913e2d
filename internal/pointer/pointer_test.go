package pointer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoveNormalisesBottomLeftOrigin(t *testing.T) {
	tr := NewTracker(800, 600)
	tr.Move(200, 150)
	got := tr.Current()
	assert.InDelta(t, 0.25, got.X, 1e-9)
	assert.InDelta(t, 0.75, got.Y, 1e-9)
}

func TestMoveClampsOutsideViewport(t *testing.T) {
	tr := NewTracker(100, 100)
	tr.Move(-20, 500)
	assert.Equal(t, State{X: 0, Y: 0}, tr.Current())
	tr.Move(250, -1)
	assert.Equal(t, State{X: 1, Y: 1}, tr.Current())
}

func TestZeroViewportFallsBackToCenter(t *testing.T) {
	tr := NewTracker(0, 0)
	tr.Move(10, 10)
	assert.Equal(t, Center, tr.Current())

	tr.Resize(100, 0)
	tr.Move(10, 10)
	assert.Equal(t, Center, tr.Current())

	dx, dy := tr.Current().Direction()
	assert.False(t, math.IsNaN(dx) || math.IsNaN(dy))
	assert.Zero(t, dx)
	assert.Zero(t, dy)
}

func TestNonFiniteSampleFallsBackToCenter(t *testing.T) {
	tr := NewTracker(100, 100)
	tr.Move(10, 10)
	tr.Move(math.NaN(), 10)
	assert.Equal(t, Center, tr.Current())
}

func TestResizeKeepsLastSample(t *testing.T) {
	tr := NewTracker(100, 100)
	tr.Move(100, 0)
	tr.Resize(1000, 1000)
	assert.Equal(t, State{X: 1, Y: 1}, tr.Current())
	tr.Move(100, 0)
	assert.InDelta(t, 0.1, tr.Current().X, 1e-9)
}

func TestDirection(t *testing.T) {
	cases := []struct {
		in     State
		dx, dy float64
	}{
		{Center, 0, 0},
		{State{0, 0}, -1, -1},
		{State{1, 1}, 1, 1},
		{State{0.75, 0.25}, 0.5, -0.5},
	}
	for _, c := range cases {
		dx, dy := c.in.Direction()
		assert.InDelta(t, c.dx, dx, 1e-9, "%+v", c.in)
		assert.InDelta(t, c.dy, dy, 1e-9, "%+v", c.in)
	}
}
