package sequence

import "math"

// Ease names an easing curve. All curves map 0->0 and 1->1 and are
// non-decreasing on [0,1].
type Ease string

const (
	Linear      Ease = "linear"
	Smooth      Ease = "smooth"
	Cubic       Ease = "cubic"
	Power1Out   Ease = "power1.out"
	Power2In    Ease = "power2.in"
	Power2Out   Ease = "power2.out"
	Power2InOut Ease = "power2.inOut"
	Power3Out   Ease = "power3.out"
	SineInOut   Ease = "sine.inOut"
	ExpoOut     Ease = "expo.out"

	DefaultEase = Power1Out
)

// clamp01 clamps x in [0,1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// smootherstep (cubic-ish) for ease="cubic"
func smootherstep(x float64) float64 {
	// 6x^5 - 15x^4 + 10x^3
	return x * x * x * (x*(x*6-15) + 10)
}

// Apply maps linear progress to eased progress. Unknown names use DefaultEase.
func (e Ease) Apply(x float64) float64 {
	x = clamp01(x)
	switch e {
	case Linear:
		return x
	case Smooth:
		return x * x * (3 - 2*x)
	case Cubic:
		return smootherstep(x)
	case Power2In:
		return x * x * x
	case Power2Out:
		return 1 - math.Pow(1-x, 3)
	case Power2InOut:
		if x < 0.5 {
			return 4 * x * x * x
		}
		return 1 - math.Pow(-2*x+2, 3)/2
	case Power3Out:
		return 1 - math.Pow(1-x, 4)
	case SineInOut:
		return -(math.Cos(math.Pi*x) - 1) / 2
	case ExpoOut:
		if x >= 1 {
			return 1
		}
		return 1 - math.Pow(2, -10*x)
	default:
		// power1.out
		return 1 - (1-x)*(1-x)
	}
}

// Known reports whether e names a built-in curve. The empty name is the default.
func (e Ease) Known() bool {
	switch e {
	case "", Linear, Smooth, Cubic, Power1Out, Power2In, Power2Out, Power2InOut, Power3Out, SineInOut, ExpoOut:
		return true
	}
	return false
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
