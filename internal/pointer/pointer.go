// Package pointer keeps the latest normalised pointer sample.
//
// Raw samples arrive in viewport pixels with the origin at the top-left (DOM
// and terminal convention). They are stored normalised to [0,1]x[0,1] with
// the origin at the bottom-left, the convention shaders and effects expect.
package pointer

import "math"

// State is a normalised pointer position.
type State struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Center is used whenever a sample cannot be normalised.
var Center = State{X: 0.5, Y: 0.5}

// Direction maps the pointer to [-1,1]x[-1,1] relative to the viewport centre.
func (s State) Direction() (dx, dy float64) {
	return (s.X - 0.5) * 2, (s.Y - 0.5) * 2
}

// Tracker holds the most recent sample. No history, no smoothing.
type Tracker struct {
	width, height float64
	cur           State
}

func NewTracker(width, height float64) *Tracker {
	return &Tracker{width: width, height: height, cur: Center}
}

// Resize updates the viewport used for normalisation. The stored sample is
// left alone; it is already normalised.
func (t *Tracker) Resize(width, height float64) {
	t.width, t.height = width, height
}

// Move normalises a raw sample and stores it. A zero or non-finite viewport,
// or a non-finite sample, stores Center instead.
func (t *Tracker) Move(rawX, rawY float64) {
	if !usable(t.width) || !usable(t.height) || !finite(rawX) || !finite(rawY) {
		t.cur = Center
		return
	}
	t.cur = State{
		X: clamp01(rawX / t.width),
		Y: clamp01(1 - rawY/t.height),
	}
}

// Current returns the latest sample.
func (t *Tracker) Current() State { return t.cur }

func (t *Tracker) Viewport() (width, height float64) { return t.width, t.height }

func usable(v float64) bool { return finite(v) && v > 0 }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
