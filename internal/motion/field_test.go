package motion

import (
	"math"
	"testing"

	"github.com/coreman2200/funtimes-inception/internal/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaveIsStaggeredByIndex(t *testing.T) {
	f := Default()
	for _, elapsed := range []float64{0, 0.37, 2.5, 11} {
		for i := 0; i < 11; i++ {
			a := f.Sample(i, elapsed)
			b := f.Sample(i+1, elapsed)
			want := 0.15 * math.Sin(elapsed*1.5+float64(i+1)*0.5)
			assert.InDelta(t, want, b.OffsetY, 1e-12)
			// stair i+1 leads stair i by phaseStep/speed seconds
			shifted := f.Sample(i, elapsed+0.5/1.5)
			assert.InDelta(t, shifted.OffsetY, b.OffsetY, 1e-12)
			assert.LessOrEqual(t, math.Abs(a.OffsetY), 0.15+1e-12)
		}
	}
}

func TestHueStaysInBand(t *testing.T) {
	f := Default()
	for i := 0; i < 12; i++ {
		for k := 0; k < 50; k++ {
			s := f.Sample(i, float64(k)*0.13)
			assert.GreaterOrEqual(t, s.Hue, 180.0)
			assert.LessOrEqual(t, s.Hue, 240.0)
			assert.GreaterOrEqual(t, s.Pulse, 0.0)
			assert.LessOrEqual(t, s.Pulse, 1.0)
		}
	}
}

func TestColorAtBandEdges(t *testing.T) {
	f := Default()
	// hue 180, s=1, l=0.6 is a light cyan: r=0.2, g=b=1.
	c := f.color(180)
	assert.InDelta(t, 0.2, c.R, 1e-5)
	assert.InDelta(t, 1.0, c.G, 1e-5)
	assert.InDelta(t, 1.0, c.B, 1e-5)
	// hue 240 is a light blue.
	c = f.color(240)
	assert.InDelta(t, 0.2, c.R, 1e-5)
	assert.InDelta(t, 0.2, c.G, 1e-5)
	assert.InDelta(t, 1.0, c.B, 1e-5)
}

func TestApplyWritesMotionOwnedFieldsOnly(t *testing.T) {
	sc := scene.New(scene.Options{
		Layout:     scene.Layout{Count: 3, Radius: 4, AngleStep: 0.4, VerticalStep: 0.3},
		CameraRest: scene.Vec3{Y: 2, Z: 10},
		FOV:        60,
		StarSize:   1,
	})
	sc.Stairs[1].Scale.X = 1.2

	f := Default()
	f.Apply(sc.Stairs, 1.0)
	f.Apply(sc.Stairs, 1.0)

	st := sc.Stairs[1]
	require.Equal(t, 1, st.Index)
	assert.InDelta(t, 0.3+0.15*math.Sin(1.5+0.5), st.Position.Y, 1e-12)
	assert.InDelta(t, 0.004, st.Spin, 1e-12)
	assert.InDelta(t, 0.4+0.004, st.Rotation.Y, 1e-12)
	assert.Equal(t, 1.2, st.Scale.X)
	assert.NotZero(t, st.Emissive.B)
}
