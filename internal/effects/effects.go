// Package effects turns a selection into the ordered list of sequences the
// scheduler should run. Effects are stateless; every parameter is fixed at
// construction or captured from the Trigger.
package effects

import (
	"math"
	"strconv"

	"github.com/coreman2200/funtimes-inception/internal/pointer"
	"github.com/coreman2200/funtimes-inception/internal/scene"
	"github.com/coreman2200/funtimes-inception/internal/sequence"
)

// Trigger is the input captured at selection time.
type Trigger struct {
	Pointer pointer.State
	Object  int
}

type Effect interface {
	Name() string
	Sequences(tr Trigger) []sequence.Sequence
}

// Tween parameterises a single-property effect that drives toward To.
type Tween struct {
	To       float64       `yaml:"to"`
	Duration float64       `yaml:"duration"`
	Ease     sequence.Ease `yaml:"ease"`
	Repeat   int           `yaml:"repeat"`
	Yoyo     bool          `yaml:"yoyo"`
}

func (t Tween) on(key sequence.Key) sequence.Sequence {
	s := sequence.Tween(key, t.To, t.Duration, t.Ease)
	s.Repeat, s.Yoyo = t.Repeat, t.Yoyo
	return s
}

func key(target, prop string) sequence.Key { return sequence.Key{Target: target, Prop: prop} }

// Bend tilts the whole stage around x and back.
type Bend struct{ Tween }

func (Bend) Name() string { return "bend" }

func (b Bend) Sequences(Trigger) []sequence.Sequence {
	return []sequence.Sequence{b.on(key(scene.StageID, "rotation.x"))}
}

// Warp inflates the star points and raises the warping flag while running.
type Warp struct{ Tween }

func (Warp) Name() string { return "warp" }

func (w Warp) Sequences(Trigger) []sequence.Sequence {
	s := w.on(key(scene.StarsID, "size"))
	flag := key(scene.StarsID, "warping")
	s.OnStart = []sequence.Assign{{Key: flag, Value: 1}}
	s.OnComplete = []sequence.Assign{{Key: flag, Value: 0}}
	return []sequence.Sequence{s}
}

// FOV pulses the camera field of view.
type FOV struct{ Tween }

func (FOV) Name() string { return "fov" }

func (f FOV) Sequences(Trigger) []sequence.Sequence {
	return []sequence.Sequence{f.on(key(scene.CameraID, "fov"))}
}

// Ripple scales the ripple plane out from From on both ground axes.
type Ripple struct {
	From  float64 `yaml:"from"`
	Tween `yaml:",inline"`
}

func (Ripple) Name() string { return "ripple" }

func (r Ripple) Sequences(Trigger) []sequence.Sequence {
	out := make([]sequence.Sequence, 0, 2)
	for _, p := range []string{"scale.x", "scale.z"} {
		s := r.on(key(scene.RippleID, p))
		from := r.From
		s.From = &from
		out = append(out, s)
	}
	return out
}

// Pulse scales the selected stair up and back.
type Pulse struct{ Tween }

func (Pulse) Name() string { return "pulse" }

func (p Pulse) Sequences(tr Trigger) []sequence.Sequence {
	id := scene.StairID(tr.Object)
	out := make([]sequence.Sequence, 0, 3)
	for _, ax := range []string{"scale.x", "scale.y", "scale.z"} {
		out = append(out, p.on(key(id, ax)))
	}
	return out
}

// Shake knocks the camera along the pointer direction, overshoots back by
// Return of the offset, then settles at Rest. Every leg is absolute so
// repeated shakes never drift the camera.
type Shake struct {
	Strength float64       `yaml:"strength"`
	Roll     float64       `yaml:"roll"`
	Return   float64       `yaml:"return"`
	Out      float64       `yaml:"out"`
	Back     float64       `yaml:"back"`
	Settle   float64       `yaml:"settle"`
	Ease     sequence.Ease `yaml:"ease"`
	// Rest is the camera resting position; roll rests at zero.
	Rest scene.Vec3 `yaml:"-"`
}

func (Shake) Name() string { return "shake" }

func (s Shake) legs(rest, offset float64) []sequence.Leg {
	return []sequence.Leg{
		{To: rest + offset, Duration: s.Out, Ease: s.Ease},
		{To: rest - s.Return*offset, Duration: s.Back, Ease: s.Ease},
		{To: rest, Duration: s.Settle, Ease: s.Ease},
	}
}

func (s Shake) Sequences(tr Trigger) []sequence.Sequence {
	dx, dy := tr.Pointer.Direction()
	if math.IsNaN(dx) || math.IsNaN(dy) {
		dx, dy = 0, 0
	}
	return []sequence.Sequence{
		{Key: key(scene.CameraID, "position.x"), Legs: s.legs(s.Rest.X, dx*s.Strength)},
		{Key: key(scene.CameraID, "position.y"), Legs: s.legs(s.Rest.Y, dy*s.Strength)},
		{Key: key(scene.CameraID, "rotation.z"), Legs: s.legs(0, dx*s.Roll)},
	}
}

// Intro flies the camera in from a distant vantage. It is pinned: nothing
// can replace or cancel it by key while it runs.
type Intro struct {
	Dolly    float64       `yaml:"dolly"`
	Lift     float64       `yaml:"lift"`
	Duration float64       `yaml:"duration"`
	Ease     sequence.Ease `yaml:"ease"`
}

func (Intro) Name() string { return "intro" }

func (in Intro) Sequences(Trigger) []sequence.Sequence {
	dolly := sequence.FromTo(key(scene.CameraID, "dolly"), in.Dolly, 0, in.Duration, in.Ease)
	lift := sequence.FromTo(key(scene.CameraID, "lift"), in.Lift, 0, in.Duration, in.Ease)
	dolly.Pinned, lift.Pinned = true, true
	return []sequence.Sequence{dolly, lift}
}

// Label is a short human name for a trigger, used in logs.
func (tr Trigger) Label() string {
	return "stair " + strconv.Itoa(tr.Object)
}
