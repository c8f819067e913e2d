// Package script drives an Orchestrator headlessly from a timed list of
// input steps, stepping the clock at a fixed rate.
package script

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-inception/internal/orchestrator"
	"github.com/coreman2200/funtimes-inception/internal/scene"
)

var ErrEmpty = errors.New("script has no steps")

// Step fires at At seconds. Exactly one action is expected per step.
type Step struct {
	At      float64     `yaml:"at" json:"at"`
	Select  *int        `yaml:"select,omitempty" json:"select,omitempty"`
	Close   bool        `yaml:"close,omitempty" json:"close,omitempty"`
	Pointer *[2]float64 `yaml:"pointer,omitempty" json:"pointer,omitempty"`
	Resize  *[2]float64 `yaml:"resize,omitempty" json:"resize,omitempty"`
}

func (s Step) Event() (orchestrator.Event, bool) {
	switch {
	case s.Resize != nil:
		return orchestrator.ResizeEvent(s.Resize[0], s.Resize[1]), true
	case s.Pointer != nil:
		return orchestrator.PointerEvent(s.Pointer[0], s.Pointer[1]), true
	case s.Select != nil:
		return orchestrator.SelectEvent(*s.Select), true
	case s.Close:
		return orchestrator.CloseEvent(), true
	}
	return orchestrator.Event{}, false
}

type Script struct {
	Duration float64 `yaml:"duration" json:"duration"`
	Steps    []Step  `yaml:"steps" json:"steps"`
}

// Parse accepts yaml or json.
func Parse(b []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if len(s.Steps) == 0 {
		return nil, ErrEmpty
	}
	sort.SliceStable(s.Steps, func(i, j int) bool { return s.Steps[i].At < s.Steps[j].At })
	if last := s.Steps[len(s.Steps)-1].At; s.Duration < last {
		s.Duration = last + 3
	}
	return &s, nil
}

func Load(path string) (*Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Run mounts o and plays s at fps. Steps due at or before a frame are
// applied before it. sample sees every frame.
func Run(o *orchestrator.Orchestrator, s *Script, fps int, sample func(scene.Frame)) int {
	if fps <= 0 {
		fps = 60
	}
	dt := 1.0 / float64(fps)
	o.Mount()
	defer o.Unmount()

	frames, next := 0, 0
	for t := 0.0; t <= s.Duration; t = float64(frames) / float64(fps) {
		for next < len(s.Steps) && s.Steps[next].At <= t {
			if ev, ok := s.Steps[next].Event(); ok {
				_ = o.Handle(ev)
			}
			next++
		}
		f := o.Tick(dt)
		frames++
		if sample != nil {
			sample(f)
		}
	}
	return frames
}
