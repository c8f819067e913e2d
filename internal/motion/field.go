// Package motion computes the continuous, time-parameterised animation every
// stair carries regardless of selections: a slow spin, a staggered vertical
// wave and an emissive hue pulse.
package motion

import (
	"math"

	"github.com/coreman2200/funtimes-inception/internal/scene"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Field holds the procedural motion constants. Hues are in degrees.
type Field struct {
	Amplitude  float64 `yaml:"amplitude"`
	Speed      float64 `yaml:"speed"`
	PhaseStep  float64 `yaml:"phase_step"`
	SpinStep   float64 `yaml:"spin_step"` // radians added per frame
	HueBase    float64 `yaml:"hue_base"`
	HueRange   float64 `yaml:"hue_range"`
	PulseSpeed float64 `yaml:"pulse_speed"`
	Saturation float64 `yaml:"saturation"`
	Lightness  float64 `yaml:"lightness"`
}

func Default() Field {
	return Field{
		Amplitude:  0.15,
		Speed:      1.5,
		PhaseStep:  0.5,
		SpinStep:   0.002,
		HueBase:    180,
		HueRange:   60,
		PulseSpeed: 2,
		Saturation: 1,
		Lightness:  0.6,
	}
}

// Sample is the motion contribution for one stair at one instant.
type Sample struct {
	OffsetY   float64
	SpinDelta float64
	Pulse     float64 // 0..1
	Hue       float64
	Emissive  scene.Color
}

// Sample is a pure function of index and elapsed seconds.
func (f Field) Sample(index int, elapsed float64) Sample {
	i := float64(index)
	pulse := (math.Sin(elapsed*f.PulseSpeed+i) + 1) / 2
	hue := f.HueBase + pulse*f.HueRange
	return Sample{
		OffsetY:   f.Amplitude * math.Sin(elapsed*f.Speed+i*f.PhaseStep),
		SpinDelta: f.SpinStep,
		Pulse:     pulse,
		Hue:       hue,
		Emissive:  f.color(hue),
	}
}

func (f Field) color(hue float64) scene.Color {
	hue = math.Mod(hue, 360)
	if hue < 0 {
		hue += 360
	}
	c := colorful.Hsl(hue, f.Saturation, f.Lightness).Clamped()
	return scene.Color{R: float32(c.R), G: float32(c.G), B: float32(c.B)}
}

type update struct {
	y, spin, rotY float64
	emissive      scene.Color
}

// Apply composes the next motion state for every stair, then writes it. Only
// position.y, rotation.y and the emissive colour are touched; anything a
// sequence owns is left for the scheduler.
func (f Field) Apply(stairs []*scene.Stair, elapsed float64) {
	next := make([]update, len(stairs))
	for i := range stairs {
		st := stairs[i]
		s := f.Sample(st.Index, elapsed)
		spin := st.Spin + s.SpinDelta
		next[i] = update{
			y:        st.BaseY + s.OffsetY,
			spin:     spin,
			rotY:     st.Angle + spin,
			emissive: s.Emissive,
		}
	}
	for i, u := range next {
		st := stairs[i]
		st.Position.Y = u.y
		st.Spin = u.spin
		st.Rotation.Y = u.rotY
		st.Emissive = u.emissive
	}
}
