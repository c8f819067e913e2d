// Package orchestrator ties the motion field, the sequence scheduler and the
// effect catalog to one scene and publishes a snapshot per frame.
//
// An Orchestrator is single-threaded: every call must come from the same
// goroutine, normally Loop.Run.
package orchestrator

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-inception/internal/clock"
	"github.com/coreman2200/funtimes-inception/internal/config"
	"github.com/coreman2200/funtimes-inception/internal/effects"
	"github.com/coreman2200/funtimes-inception/internal/motion"
	"github.com/coreman2200/funtimes-inception/internal/pointer"
	"github.com/coreman2200/funtimes-inception/internal/scene"
	"github.com/coreman2200/funtimes-inception/internal/sequence"
	"github.com/coreman2200/funtimes-inception/internal/shader"
	"github.com/coreman2200/funtimes-inception/internal/topics"
)

var ErrInvalidSelection = errors.New("invalid selection")

// Surface consumes one frame snapshot per tick.
type Surface interface {
	Publish(f scene.Frame) error
}

// Panel shows topic content. It only ever receives ids.
type Panel interface {
	Open(topicID int)
	Close()
}

type State int

const (
	Idle State = iota
	PanelOpen
)

func (s State) String() string {
	if s == PanelOpen {
		return "panel-open"
	}
	return "idle"
}

type Options struct {
	Config   *config.Config
	Topics   *topics.Store
	Panel    Panel
	Surfaces []Surface
	Clock    *clock.Clock
	Log      zerolog.Logger
}

type Orchestrator struct {
	cfg      *config.Config
	scene    *scene.Scene
	sched    *sequence.Scheduler
	field    motion.Field
	catalog  *effects.Catalog
	variant  string
	factors  shader.Factors
	pointer  *pointer.Tracker
	topics   *topics.Store
	panel    Panel
	surfaces []Surface
	clock    *clock.Clock
	log      zerolog.Logger

	state   State
	topic   int
	frameID uint64
	mounted bool
}

type nopPanel struct{}

func (nopPanel) Open(int) {}
func (nopPanel) Close()   {}

// New builds the scene and its collaborators from o. Nothing is mounted yet.
func New(o Options) (*Orchestrator, error) {
	cfg := o.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if o.Topics == nil {
		o.Topics = topics.Default()
	}
	if o.Panel == nil {
		o.Panel = nopPanel{}
	}
	if o.Clock == nil {
		o.Clock = clock.New(nil)
	}

	sc := scene.New(cfg.Scene())
	orc := &Orchestrator{
		cfg:      cfg,
		scene:    sc,
		field:    cfg.Motion,
		catalog:  effects.NewCatalog(cfg.Effects, cfg.Camera.Rest),
		variant:  cfg.Effects.Variant,
		factors:  shader.Factors{Base: cfg.Stars.Factor, Warp: cfg.Stars.WarpFactor},
		pointer:  pointer.NewTracker(0, 0),
		topics:   o.Topics,
		panel:    o.Panel,
		surfaces: o.Surfaces,
		clock:    o.Clock,
		log:      o.Log,
		topic:    scene.NoPanel,
	}
	orc.sched = sequence.NewScheduler(sequence.ResolverFunc(orc.resolve))
	return orc, nil
}

func (o *Orchestrator) resolve(id string) (sequence.Target, bool) {
	n, ok := o.scene.Lookup(id)
	if !ok {
		return nil, false
	}
	return n, true
}

// AddSurface registers another frame consumer.
func (o *Orchestrator) AddSurface(s Surface) { o.surfaces = append(o.surfaces, s) }

// Mount attaches every node and starts the pinned intro.
func (o *Orchestrator) Mount() {
	for _, id := range o.scene.IDs() {
		o.scene.Attach(id)
	}
	if err := o.sched.RegisterAll(o.catalog.Intro()); err != nil {
		o.log.Warn().Err(err).Msg("intro not registered")
	}
	o.mounted = true
	o.log.Info().Int("stairs", len(o.scene.Stairs)).Str("variant", o.variant).Msg("mounted")
}

// Unmount cancels every sequence, pinned ones included, closes any panel
// and detaches the scene so late writes are skipped.
func (o *Orchestrator) Unmount() {
	o.sched.CancelAll()
	o.Close()
	o.scene.DetachAll()
	o.mounted = false
	o.log.Info().Msg("unmounted")
}

func (o *Orchestrator) Mounted() bool { return o.mounted }

// Select fires the configured effect variant for object i with the pointer
// captured now, then opens topic i. An out-of-range topic returns
// ErrInvalidSelection after the effects have been registered.
func (o *Orchestrator) Select(i int) error {
	tr := effects.Trigger{Pointer: o.pointer.Current(), Object: i}
	seqs, err := o.catalog.Fire(o.variant, tr)
	if err != nil {
		return err
	}
	if err := o.sched.RegisterAll(seqs); err != nil {
		if errors.Is(err, sequence.ErrPinned) {
			o.log.Debug().Err(err).Msg("effect skipped")
		} else {
			o.log.Warn().Err(err).Msg("effect rejected")
		}
	}
	o.log.Info().
		Int("object", i).
		Float64("px", tr.Pointer.X).
		Float64("py", tr.Pointer.Y).
		Int("sequences", len(seqs)).
		Msg("select " + tr.Label())

	if !o.topics.Valid(i) {
		return fmt.Errorf("topic %d of %d: %w", i, o.topics.Len(), ErrInvalidSelection)
	}
	if o.state == PanelOpen {
		o.panel.Close()
	}
	o.panel.Open(i)
	o.state, o.topic = PanelOpen, i
	o.log.Debug().Int("topic", i).Msg("panel open")
	return nil
}

// Close returns to Idle. It is a no-op when no panel is open.
func (o *Orchestrator) Close() {
	if o.state != PanelOpen {
		return
	}
	o.panel.Close()
	o.log.Debug().Int("topic", o.topic).Msg("panel closed")
	o.state, o.topic = Idle, scene.NoPanel
}

// Handle applies one input event. Only selections can fail.
func (o *Orchestrator) Handle(ev Event) error {
	switch ev.Kind {
	case EventPointer:
		o.MovePointer(ev.X, ev.Y)
	case EventResize:
		o.Resize(ev.X, ev.Y)
	case EventSelect:
		return o.Select(ev.Index)
	case EventClose:
		o.Close()
	default:
		return fmt.Errorf("unknown event kind %d", ev.Kind)
	}
	return nil
}

func (o *Orchestrator) MovePointer(rawX, rawY float64) { o.pointer.Move(rawX, rawY) }

func (o *Orchestrator) Resize(width, height float64) { o.pointer.Resize(width, height) }

func (o *Orchestrator) Pointer() pointer.State { return o.pointer.Current() }

// Tick advances by a fixed delta in seconds.
func (o *Orchestrator) Tick(delta float64) scene.Frame { return o.step(o.clock.Step(delta)) }

// TickNow advances by the wall time since the previous call.
func (o *Orchestrator) TickNow() scene.Frame { return o.step(o.clock.Tick()) }

// step runs one frame: motion first, then the scheduler, so a sequence
// always wins over motion on a property both write.
func (o *Orchestrator) step(f clock.Frame) scene.Frame {
	if o.mounted {
		o.field.Apply(o.scene.Stairs, f.Elapsed)
	}

	rep := o.sched.Advance(f.Delta)
	for _, k := range rep.Missing {
		o.log.Debug().Str("target", k.Target).Str("prop", k.Prop).Msg("missing target")
	}
	for _, k := range rep.Completed {
		o.log.Debug().Str("target", k.Target).Str("prop", k.Prop).Msg("sequence complete")
	}

	o.frameID++
	fr := o.scene.Snapshot(o.frameID, f.Elapsed)
	fr.Uniforms = shader.Uniforms(f.Elapsed, o.pointer.Current(), o.scene.Stars.Warping, o.factors)
	if o.state == PanelOpen {
		fr.Panel = o.topic
	}
	for _, s := range o.surfaces {
		if err := s.Publish(fr); err != nil {
			o.log.Warn().Err(err).Uint64("frame", fr.ID).Msg("publish failed")
		}
	}
	return fr
}

func (o *Orchestrator) State() State { return o.state }

// Topic returns the open topic id, if any.
func (o *Orchestrator) Topic() (int, bool) {
	if o.state != PanelOpen {
		return scene.NoPanel, false
	}
	return o.topic, true
}

func (o *Orchestrator) Scene() *scene.Scene { return o.scene }

func (o *Orchestrator) Scheduler() *sequence.Scheduler { return o.sched }

func (o *Orchestrator) Variant() string { return o.variant }
