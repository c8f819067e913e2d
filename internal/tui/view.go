// Package tui is a terminal preview of the scene: a top-down plot of the
// spiral, a status line and the open topic panel. Mouse motion and clicks
// are fed back to the frame loop.
package tui

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/coreman2200/funtimes-inception/internal/orchestrator"
	"github.com/coreman2200/funtimes-inception/internal/scene"
	"github.com/coreman2200/funtimes-inception/internal/topics"
)

type cell struct{ x, y int }

// View is both a render Surface and a Panel.
type View struct {
	mu     sync.Mutex
	screen tcell.Screen
	topics *topics.Store
	input  orchestrator.Input
	frame  scene.Frame
	panel  int
	hits   map[int]cell
	held   bool // Button1 down at the previous mouse event
}

func New(s tcell.Screen, store *topics.Store, in orchestrator.Input) *View {
	return &View{screen: s, topics: store, input: in, panel: scene.NoPanel, hits: map[int]cell{}}
}

func (v *View) Publish(f scene.Frame) error {
	v.mu.Lock()
	v.frame = f
	v.draw()
	v.mu.Unlock()
	v.screen.Show()
	return nil
}

func (v *View) Open(id int) {
	v.mu.Lock()
	v.panel = id
	v.mu.Unlock()
}

func (v *View) Close() {
	v.mu.Lock()
	v.panel = scene.NoPanel
	v.mu.Unlock()
}

func (v *View) post(ev orchestrator.Event) {
	if v.input != nil {
		v.input.Post(ev)
	}
}

// HandleEvent translates one terminal event. It returns false when the user
// asked to quit.
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventResize:
		w, h := e.Size()
		v.post(orchestrator.ResizeEvent(float64(w), float64(h)))
		v.screen.Sync()
	case *tcell.EventMouse:
		x, y := e.Position()
		v.post(orchestrator.PointerEvent(float64(x), float64(y)))
		down := e.Buttons()&tcell.Button1 != 0
		if down && !v.held {
			if i, ok := v.hit(x, y); ok {
				v.post(orchestrator.SelectEvent(i))
			}
		}
		v.held = down
	case *tcell.EventKey:
		switch e.Key() {
		case tcell.KeyEscape:
			v.post(orchestrator.CloseEvent())
		case tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			r := e.Rune()
			switch {
			case r == 'q':
				return false
			case r >= '0' && r <= '9':
				v.post(orchestrator.SelectEvent(int(r - '0')))
			}
		}
	}
	return true
}

// hit finds the stair drawn at or next to (x, y).
func (v *View) hit(x, y int) (int, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	best, bestD := -1, 3
	for i, c := range v.hits {
		d := abs(c.x-x) + abs(c.y-y)
		if d < bestD || (d == bestD && i < best) {
			best, bestD = i, d
		}
	}
	return best, best >= 0
}

// Run polls terminal input until ctx ends or the user quits; quit is called
// in the latter case. The screen is finalised on return.
func (v *View) Run(ctx context.Context, quit func()) error {
	v.screen.EnableMouse(tcell.MouseMotionEvents)
	w, h := v.screen.Size()
	v.post(orchestrator.ResizeEvent(float64(w), float64(h)))
	defer v.screen.Fini()

	go func() {
		<-ctx.Done()
		_ = v.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()
	for {
		ev := v.screen.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return nil
		}
		if !v.HandleEvent(ev) {
			if quit != nil {
				quit()
			}
			return nil
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func (v *View) text(x, y int, style tcell.Style, s string) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func rgb(c scene.Color) tcell.Color {
	to := func(f float32) int32 { return int32(math.Round(math.Max(0, math.Min(1, float64(f))) * 255)) }
	return tcell.NewRGBColor(to(c.R), to(c.G), to(c.B))
}

// draw renders the current frame. Callers hold v.mu.
func (v *View) draw() {
	s := v.screen
	s.Clear()
	w, h := s.Size()
	f := v.frame

	plotW := w
	if v.panel != scene.NoPanel {
		plotW = w * 2 / 3
	}
	cx, cy := plotW/2, h/2

	reach := 1.0
	for _, st := range f.Stairs {
		reach = math.Max(reach, math.Max(math.Abs(st.Position.X), math.Abs(st.Position.Z)))
	}
	sx := float64(plotW/2-2) / reach
	sy := float64(h/2-2) / reach

	bend := f.Stage.Rotation.X
	v.hits = map[int]cell{}
	for _, st := range f.Stairs {
		p := st.Position
		depth := p.Z*math.Cos(bend) - p.Y*math.Sin(bend)
		x := cx + int(math.Round((p.X-f.Camera.Position.X)*sx))
		y := cy + int(math.Round(depth*sy))
		glyph := '■'
		if st.Scale.X > 1.05 {
			glyph = '█'
		}
		s.SetContent(x, y, glyph, nil, tcell.StyleDefault.Foreground(rgb(st.Emissive)))
		v.hits[st.Index] = cell{x, y}
	}

	if f.Ripple.Scale.X > 0 {
		r := f.Ripple.Scale.X / 12 * float64(plotW/2-2)
		for a := 0.0; a < 2*math.Pi; a += 0.1 {
			x := cx + int(r*math.Cos(a))
			y := cy + int(r*math.Sin(a)*sy/sx)
			s.SetContent(x, y, '·', nil, tcell.StyleDefault.Foreground(tcell.ColorTeal))
		}
	}

	status := fmt.Sprintf("t=%6.2f fov=%5.1f bend=%4.2f stars=%4.2f", f.Elapsed, f.Camera.FOV, bend, f.Stars.Size)
	if f.Stars.Warping {
		status += " WARP"
	}
	v.text(0, 0, tcell.StyleDefault.Bold(true), status)
	v.text(0, h-1, tcell.StyleDefault.Dim(true), "click/0-9 select  esc close  q quit")

	if v.panel != scene.NoPanel {
		v.drawPanel(plotW+1, 1, w-plotW-2, h-3)
	}
}

func (v *View) drawPanel(x, y, w, h int) {
	t, err := v.topics.Get(v.panel)
	if err != nil || w < 4 || h < 3 {
		return
	}
	border := tcell.StyleDefault.Foreground(tcell.ColorAqua)
	for i := 0; i < h; i++ {
		v.screen.SetContent(x, y+i, '│', nil, border)
	}
	v.text(x+2, y, border.Bold(true), t.Title)
	row := y + 2
	for _, line := range wrap(t.Content, w-3) {
		if row >= y+h {
			return
		}
		v.text(x+2, row, tcell.StyleDefault, line)
		row++
	}
	for _, l := range t.Links {
		if row >= y+h {
			return
		}
		v.text(x+2, row, tcell.StyleDefault.Underline(true), "• "+l.Label)
		row++
	}
}

// wrap splits s into lines of at most n runes, breaking on spaces.
func wrap(s string, n int) []string {
	if n <= 0 || s == "" {
		return nil
	}
	var out []string
	line := []rune{}
	word := []rune{}
	flush := func() {
		if len(line) > 0 {
			out = append(out, string(line))
			line = line[:0]
		}
	}
	for _, r := range s + " " {
		if r != ' ' {
			word = append(word, r)
			continue
		}
		if len(line)+len(word)+1 > n && len(line) > 0 {
			flush()
		}
		if len(line) > 0 {
			line = append(line, ' ')
		}
		line = append(line, word...)
		word = word[:0]
	}
	flush()
	return out
}
