package led

import (
	"context"
	"fmt"
	"time"

	"github.com/coreman2200/funtimes-inception/internal/scene"
)

// Pattern is a wiring check played on the strip before the show starts.
type Pattern string

const (
	NoPattern  Pattern = ""
	IndexSweep Pattern = "index_sweep"
	RGBTest    Pattern = "rgb_channels"
)

// Runner steps through a pattern one frame at a time.
type Runner struct {
	pattern Pattern
	pixels  int
	step    int
}

func NewRunner(p Pattern, pixels int) (*Runner, error) {
	switch p {
	case NoPattern, IndexSweep, RGBTest:
		return &Runner{pattern: p, pixels: pixels}, nil
	}
	return nil, fmt.Errorf("unknown led pattern %q", p)
}

// Step returns the next frame, or false once the pattern is done.
func (r *Runner) Step() (scene.Frame, bool) {
	f := scene.Frame{ID: uint64(r.step + 1), Panel: scene.NoPanel, Stairs: make([]scene.StairState, r.pixels)}
	for i := range f.Stairs {
		f.Stairs[i].Index = i
	}
	switch r.pattern {
	case IndexSweep:
		if r.step >= r.pixels {
			return f, false
		}
		f.Stairs[r.step].Emissive = scene.Color{R: 1, G: 1, B: 1}
	case RGBTest:
		if r.step >= 3 {
			return f, false
		}
		c := scene.Color{}
		switch r.step {
		case 0:
			c.R = 1
		case 1:
			c.G = 1
		case 2:
			c.B = 1
		}
		for i := range f.Stairs {
			f.Stairs[i].Emissive = c
		}
	default:
		return f, false
	}
	r.step++
	return f, true
}

// Calibrate plays p on m with gap between frames and blanks the strip after.
func Calibrate(ctx context.Context, m *Mirror, p Pattern, pixels int, gap time.Duration) error {
	r, err := NewRunner(p, pixels)
	if err != nil {
		return err
	}
	t := time.NewTicker(gap)
	defer t.Stop()
	for {
		f, ok := r.Step()
		if err := m.Publish(f); err != nil {
			return err
		}
		if !ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}
