package shader

import "github.com/coreman2200/funtimes-inception/internal/pointer"

// Values are the per-frame shader inputs handed to the render surface.
type Values struct {
	Time       float64       `json:"time"`
	Pointer    pointer.State `json:"pointer"`
	StarFactor float64       `json:"starFactor"`
}

// Factors picks the star spread factor: Warp while warping, Base otherwise.
type Factors struct {
	Base float64
	Warp float64
}

// Uniforms is a plain function of frame inputs; no render hook involved.
func Uniforms(elapsed float64, p pointer.State, warping bool, f Factors) Values {
	factor := f.Base
	if warping {
		factor = f.Warp
	}
	return Values{Time: elapsed, Pointer: p, StarFactor: factor}
}
