package orchestrator

import (
	"context"
	"time"
)

type EventKind int

const (
	EventPointer EventKind = iota
	EventResize
	EventSelect
	EventClose
)

func (k EventKind) String() string {
	switch k {
	case EventPointer:
		return "pointer"
	case EventResize:
		return "resize"
	case EventSelect:
		return "select"
	case EventClose:
		return "close"
	}
	return "unknown"
}

// Event is an input from any adapter. X/Y carry raw pointer pixels or the
// viewport size; Index carries the selected object.
type Event struct {
	Kind  EventKind
	X, Y  float64
	Index int
}

func PointerEvent(x, y float64) Event { return Event{Kind: EventPointer, X: x, Y: y} }
func ResizeEvent(w, h float64) Event  { return Event{Kind: EventResize, X: w, Y: h} }
func SelectEvent(i int) Event         { return Event{Kind: EventSelect, Index: i} }
func CloseEvent() Event               { return Event{Kind: EventClose} }

// Input accepts events without blocking. Loop implements it; adapters
// depend on it rather than on Loop.
type Input interface {
	Post(ev Event) bool
}

// Loop owns an Orchestrator and serialises input events and frame ticks on
// one goroutine. Adapters only ever call Send or Post.
type Loop struct {
	o      *Orchestrator
	fps    int
	events chan Event
}

func NewLoop(o *Orchestrator, fps, buffer int) *Loop {
	if fps <= 0 {
		fps = 60
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &Loop{o: o, fps: fps, events: make(chan Event, buffer)}
}

// Send queues ev, blocking until there is room or ctx ends.
func (l *Loop) Send(ctx context.Context, ev Event) error {
	select {
	case l.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post queues ev without blocking and reports whether it was accepted.
// Pointer samples are the usual callers; dropping one is harmless.
func (l *Loop) Post(ev Event) bool {
	select {
	case l.events <- ev:
		return true
	default:
		return false
	}
}

func (l *Loop) handle(ev Event) {
	if err := l.o.Handle(ev); err != nil {
		l.o.log.Warn().Err(err).Str("event", ev.Kind.String()).Msg("input")
	}
}

// Run mounts the scene and ticks at the configured rate until ctx ends,
// then unmounts. Events are applied between frames in arrival order.
func (l *Loop) Run(ctx context.Context) error {
	l.o.Mount()
	defer l.o.Unmount()

	tick := time.NewTicker(time.Second / time.Duration(l.fps))
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-l.events:
			l.handle(ev)
		case <-tick.C:
			l.o.TickNow()
		}
	}
}
