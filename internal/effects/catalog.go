package effects

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/coreman2200/funtimes-inception/internal/scene"
	"github.com/coreman2200/funtimes-inception/internal/sequence"
)

var (
	ErrUnknownVariant = errors.New("unknown effect variant")
	ErrUnknownEffect  = errors.New("unknown effect")
)

const (
	VariantClassic = "classic"
	VariantImpact  = "impact"
)

// Params is the tunable part of every effect, loaded from configuration.
type Params struct {
	Variant  string              `yaml:"variant"`
	Variants map[string][]string `yaml:"variants,omitempty"`
	Bend     Tween               `yaml:"bend"`
	Warp     Tween               `yaml:"warp"`
	FOV      Tween               `yaml:"fov"`
	Ripple   Ripple              `yaml:"ripple"`
	Pulse    Tween               `yaml:"pulse"`
	Shake    Shake               `yaml:"shake"`
	Intro    Intro               `yaml:"intro"`
}

// DefaultVariants lists the effects fired per selection, in order.
func DefaultVariants() map[string][]string {
	return map[string][]string{
		VariantClassic: {"pulse", "bend", "warp", "fov"},
		VariantImpact:  {"pulse", "bend", "warp", "ripple", "shake"},
	}
}

func DefaultParams() Params {
	return Params{
		Variant:  VariantClassic,
		Variants: DefaultVariants(),
		Bend:     Tween{To: math.Pi / 3, Duration: 1.5, Ease: sequence.Power2InOut, Repeat: 1, Yoyo: true},
		Warp:     Tween{To: 4, Duration: 0.8, Ease: sequence.Power2InOut, Repeat: 1, Yoyo: true},
		FOV:      Tween{To: 50, Duration: 0.3, Ease: sequence.Power1Out, Repeat: 1, Yoyo: true},
		Ripple:   Ripple{From: 0, Tween: Tween{To: 12, Duration: 1.2, Ease: sequence.Power2Out}},
		Pulse:    Tween{To: 1.2, Duration: 0.5, Ease: sequence.Power1Out, Repeat: 1, Yoyo: true},
		Shake: Shake{
			Strength: 0.3, Roll: 0.05, Return: 0.6,
			Out: 0.08, Back: 0.12, Settle: 0.08,
			Ease: sequence.Power2Out,
		},
		Intro: Intro{Dolly: 30, Lift: 8, Duration: 3, Ease: sequence.Power3Out},
	}
}

// Catalog maps effect names to instances and variants to ordered name lists.
type Catalog struct {
	byName   map[string]Effect
	variants map[string][]string
	intro    Intro
}

// NewCatalog builds the catalog. rest is the camera resting position the
// shake settles back to.
func NewCatalog(p Params, rest scene.Vec3) *Catalog {
	shake := p.Shake
	shake.Rest = rest
	c := &Catalog{
		byName:   map[string]Effect{},
		variants: p.Variants,
		intro:    p.Intro,
	}
	if c.variants == nil {
		c.variants = DefaultVariants()
	}
	for _, e := range []Effect{
		Bend{p.Bend}, Warp{p.Warp}, FOV{p.FOV}, p.Ripple, Pulse{p.Pulse}, shake,
	} {
		c.byName[e.Name()] = e
	}
	return c
}

// Get returns a named effect.
func (c *Catalog) Get(name string) (Effect, bool) {
	e, ok := c.byName[name]
	return e, ok
}

// Names lists the known effects.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.byName))
	for n := range c.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Validate checks that every variant references known effects.
func (c *Catalog) Validate() error {
	for v, names := range c.variants {
		for _, n := range names {
			if _, ok := c.byName[n]; !ok {
				return fmt.Errorf("variant %q: %s: %w", v, n, ErrUnknownEffect)
			}
		}
	}
	return nil
}

// Fire expands a variant into its sequences, in effect order.
func (c *Catalog) Fire(variant string, tr Trigger) ([]sequence.Sequence, error) {
	names, ok := c.variants[variant]
	if !ok {
		return nil, fmt.Errorf("%q: %w", variant, ErrUnknownVariant)
	}
	var out []sequence.Sequence
	for _, n := range names {
		e, ok := c.byName[n]
		if !ok {
			return nil, fmt.Errorf("variant %q: %s: %w", variant, n, ErrUnknownEffect)
		}
		out = append(out, e.Sequences(tr)...)
	}
	return out, nil
}

// Intro returns the landing sequences.
func (c *Catalog) Intro() []sequence.Sequence {
	return c.intro.Sequences(Trigger{})
}
