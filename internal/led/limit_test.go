package led

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/funtimes-inception/internal/scene"
)

func white(n int) []scene.Color {
	buf := make([]scene.Color, n)
	for i := range buf {
		buf[i] = scene.Color{R: 1, G: 1, B: 1}
	}
	return buf
}

func TestLimitBudgetClamp(t *testing.T) {
	buf := white(10)
	l := Limit{WhiteCap: 3, ChanMA: 20, BudgetMA: 300, Knee: 0.9, Gamma: 1}
	assert.InDelta(t, 600, l.Current(buf), 1e-6)

	l.Apply(buf)
	assert.LessOrEqual(t, l.Current(buf), 300.1)
}

func TestLimitKneeIsGentle(t *testing.T) {
	buf := white(5) // 300 mA against a 310 mA budget
	l := Limit{ChanMA: 20, BudgetMA: 310, Knee: 0.9, Gamma: 1}
	l.Apply(buf)
	cur := l.Current(buf)
	assert.Less(t, cur, 300.0)
	assert.Greater(t, cur, 290.0)
}

func TestLimitWhiteCap(t *testing.T) {
	buf := white(1)
	Limit{WhiteCap: 1.5, Gamma: 1}.Apply(buf)
	assert.LessOrEqual(t, float64(buf[0].R+buf[0].G+buf[0].B), 1.5001)
}

func TestLimitGamma(t *testing.T) {
	buf := []scene.Color{{R: 0.25, G: 0, B: 1}}
	Limit{Gamma: 2}.Apply(buf)
	assert.InDelta(t, 0.5, buf[0].R, 1e-6)
	assert.Equal(t, float32(0), buf[0].G)
	assert.InDelta(t, 1, buf[0].B, 1e-6)
}
