package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/funtimes-inception/internal/pointer"
)

func TestUniforms(t *testing.T) {
	f := Factors{Base: 4, Warp: 6}
	p := pointer.State{X: 0.2, Y: 0.9}

	calm := Uniforms(1.5, p, false, f)
	assert.Equal(t, Values{Time: 1.5, Pointer: p, StarFactor: 4}, calm)

	warp := Uniforms(2, p, true, f)
	assert.Equal(t, 6.0, warp.StarFactor)
	assert.Equal(t, 2.0, warp.Time)
}
