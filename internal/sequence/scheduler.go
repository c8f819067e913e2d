package sequence

import (
	"fmt"
	"math"
)

// entry is the runtime state of one registered sequence.
type entry struct {
	seq     Sequence
	id      uint64
	points  []float64 // points[0] is the start; points[i+1] ends Legs[i]
	sampled bool
	elapsed float64
	phase   Phase
}

func newEntry(seq Sequence, id uint64) *entry {
	e := &entry{seq: seq, id: id, phase: Pending, points: make([]float64, len(seq.Legs)+1)}
	for i, l := range seq.Legs {
		e.points[i+1] = l.To
	}
	if seq.From != nil {
		e.setStart(*seq.From)
	}
	return e
}

func (e *entry) setStart(v float64) {
	e.points[0] = v
	e.sampled = true
}

// at is the pure transition function: phase and value at time t since
// registration.
func (e *entry) at(t float64) (Phase, float64) {
	if t < e.seq.Delay {
		return Pending, e.points[0]
	}
	t -= e.seq.Delay
	pass := e.seq.Pass()
	passes := e.seq.passes()
	if pass <= 0 || t >= pass*float64(passes) {
		return Complete, e.final()
	}
	n := int(t / pass)
	if n >= passes {
		return Complete, e.final()
	}
	local := t - float64(n)*pass
	if e.seq.Yoyo && n%2 == 1 {
		return Reversing, e.backward(local)
	}
	return Forward, e.forward(local)
}

func (e *entry) final() float64 {
	if e.seq.Yoyo && e.seq.passes()%2 == 0 {
		return e.points[0]
	}
	return e.points[len(e.points)-1]
}

func (e *entry) forward(local float64) float64 {
	legs := e.seq.Legs
	for i, l := range legs {
		if local <= l.Duration || i == len(legs)-1 {
			return lerp(e.points[i], e.points[i+1], l.Ease.Apply(progress(local, l.Duration)))
		}
		local -= l.Duration
	}
	return e.points[len(e.points)-1]
}

func (e *entry) backward(local float64) float64 {
	legs := e.seq.Legs
	for j := len(legs) - 1; j >= 0; j-- {
		l := legs[j]
		if local <= l.Duration || j == 0 {
			return lerp(e.points[j+1], e.points[j], l.Ease.Apply(progress(local, l.Duration)))
		}
		local -= l.Duration
	}
	return e.points[0]
}

func progress(local, duration float64) float64 {
	if duration <= 0 {
		return 1
	}
	return math.Min(local/duration, 1)
}

// Report summarises one Advance call.
type Report struct {
	Written   int
	Missing   []Key
	Started   []Key
	Completed []Key
}

// Scheduler owns the registry of active sequences. It is not safe for
// concurrent use; the frame loop is its only caller.
type Scheduler struct {
	res    Resolver
	active map[Key]*entry
	order  []*entry
	nextID uint64
}

func NewScheduler(r Resolver) *Scheduler {
	return &Scheduler{res: r, active: map[Key]*entry{}}
}

// Register installs seq, retiring any sequence on the same key without
// running its side effects. The start value is sampled from the live
// property now, or on the first advance that finds the target mounted.
func (s *Scheduler) Register(seq Sequence) error {
	if len(seq.Legs) == 0 {
		return fmt.Errorf("%s: %w", seq.Key, ErrEmptySequence)
	}
	if old, ok := s.active[seq.Key]; ok {
		if old.seq.Pinned {
			return fmt.Errorf("%s: %w", seq.Key, ErrPinned)
		}
		s.drop(old)
	}
	s.nextID++
	e := newEntry(seq, s.nextID)
	s.sample(e)
	s.active[seq.Key] = e
	s.order = append(s.order, e)
	return nil
}

// RegisterAll registers every sequence in order and returns the first error.
// Later sequences are still registered after a failure.
func (s *Scheduler) RegisterAll(seqs []Sequence) error {
	var first error
	for _, q := range seqs {
		if err := s.Register(q); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (s *Scheduler) sample(e *entry) {
	if e.sampled {
		return
	}
	t, ok := s.res.Resolve(e.seq.Key.Target)
	if !ok {
		return
	}
	if v, ok := t.Get(e.seq.Key.Prop); ok {
		e.setStart(v)
	}
}

// Cancel removes the sequence on key without side effects. Pinned sequences
// are left running.
func (s *Scheduler) Cancel(key Key) bool {
	e, ok := s.active[key]
	if !ok || e.seq.Pinned {
		return false
	}
	s.drop(e)
	return true
}

// CancelAll removes every sequence, pinned or not.
func (s *Scheduler) CancelAll() {
	s.active = map[Key]*entry{}
	s.order = nil
}

func (s *Scheduler) drop(e *entry) {
	delete(s.active, e.seq.Key)
	for i, o := range s.order {
		if o == e {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// Advance moves every active sequence forward by delta seconds and writes the
// interpolated values. A missing target skips that write only.
func (s *Scheduler) Advance(delta float64) Report {
	if delta < 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
		delta = 0
	}
	var rep Report
	keep := s.order[:0]
	for _, e := range s.order {
		e.elapsed += delta
		phase, v := e.at(e.elapsed)

		if e.phase == Pending && phase != Pending {
			s.apply(e.seq.OnStart, &rep)
			rep.Started = append(rep.Started, e.seq.Key)
		}
		if phase != Pending {
			if !e.sampled {
				s.sample(e)
				phase, v = e.at(e.elapsed)
			}
			if s.write(e.seq.Key, v) {
				rep.Written++
			} else {
				rep.Missing = append(rep.Missing, e.seq.Key)
			}
		}
		e.phase = phase

		if phase == Complete {
			s.apply(e.seq.OnComplete, &rep)
			rep.Completed = append(rep.Completed, e.seq.Key)
			delete(s.active, e.seq.Key)
			continue
		}
		keep = append(keep, e)
	}
	for i := len(keep); i < len(s.order); i++ {
		s.order[i] = nil
	}
	s.order = keep
	return rep
}

func (s *Scheduler) write(k Key, v float64) bool {
	t, ok := s.res.Resolve(k.Target)
	if !ok {
		return false
	}
	return t.Set(k.Prop, v)
}

func (s *Scheduler) apply(as []Assign, rep *Report) {
	for _, a := range as {
		if !s.write(a.Key, a.Value) {
			rep.Missing = append(rep.Missing, a.Key)
		}
	}
}

// Active reports whether key currently has a sequence.
func (s *Scheduler) Active(key Key) bool {
	_, ok := s.active[key]
	return ok
}

// Elapsed returns the time accumulated by the sequence on key.
func (s *Scheduler) Elapsed(key Key) (float64, bool) {
	e, ok := s.active[key]
	if !ok {
		return 0, false
	}
	return e.elapsed, true
}

// PhaseOf returns the lifecycle phase of the sequence on key as of the last
// Advance.
func (s *Scheduler) PhaseOf(key Key) (Phase, bool) {
	e, ok := s.active[key]
	if !ok {
		return Complete, false
	}
	return e.phase, true
}

func (s *Scheduler) Len() int { return len(s.order) }

// Keys lists active keys in registration order.
func (s *Scheduler) Keys() []Key {
	out := make([]Key, len(s.order))
	for i, e := range s.order {
		out[i] = e.seq.Key
	}
	return out
}
