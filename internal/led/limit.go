package led

import (
	"math"

	"github.com/coreman2200/funtimes-inception/internal/scene"
)

// Limit shapes stair glow before it reaches the strip.
//
// WhiteCap bounds R+G+B per pixel. BudgetMA bounds the estimated strip
// current: load past Knee*BudgetMA is compressed so it never reaches the
// budget. Gamma
// encodes linear colour for the LEDs; 0 or 1 leaves it linear.
type Limit struct {
	WhiteCap float64 `yaml:"white_cap"`
	ChanMA   float64 `yaml:"chan_ma"`
	BudgetMA float64 `yaml:"budget_ma"`
	Knee     float64 `yaml:"knee"`
	Gamma    float64 `yaml:"gamma"`
}

// DefaultLimit matches WS2812 strips at 20 mA per channel with no budget.
func DefaultLimit() Limit {
	return Limit{WhiteCap: 3, ChanMA: 20, Knee: 0.9, Gamma: 2.2}
}

// Current estimates the draw of buf in mA.
func (l Limit) Current(buf []scene.Color) float64 {
	cm := l.ChanMA
	if cm <= 0 {
		cm = 20
	}
	total := 0.0
	for _, c := range buf {
		total += float64(c.R+c.G+c.B) * cm
	}
	return total
}

// Apply caps, budgets and gamma-encodes buf in place.
func (l Limit) Apply(buf []scene.Color) {
	if l.WhiteCap > 0 {
		wc := float32(l.WhiteCap)
		for i := range buf {
			if s := buf[i].R + buf[i].G + buf[i].B; s > wc {
				buf[i] = mul(buf[i], wc/s)
			}
		}
	}

	if l.BudgetMA > 0 {
		if total := l.Current(buf); total > 0 {
			knee := l.Knee
			if knee <= 0 || knee >= 1 {
				knee = 0.9
			}
			if ratio := total / l.BudgetMA; ratio > knee {
				x := (ratio - knee) / (1 - knee)
				target := knee + (1-knee)*(1-math.Exp(-x))
				scaleAll(buf, float32(target/ratio))
			}
		}
	}

	if l.Gamma > 0 && l.Gamma != 1 {
		ig := 1 / l.Gamma
		for i := range buf {
			buf[i] = scene.Color{R: powf(buf[i].R, ig), G: powf(buf[i].G, ig), B: powf(buf[i].B, ig)}
		}
	}
}

func mul(c scene.Color, s float32) scene.Color {
	return scene.Color{R: c.R * s, G: c.G * s, B: c.B * s}
}

func scaleAll(buf []scene.Color, s float32) {
	if s >= 1 {
		return
	}
	for i := range buf {
		buf[i] = mul(buf[i], s)
	}
}

func powf(x float32, p float64) float32 {
	if x <= 0 {
		return 0
	}
	return float32(math.Pow(float64(x), p))
}
