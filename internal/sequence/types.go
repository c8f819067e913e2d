package sequence

import "errors"

var (
	// ErrPinned is returned when a key is held by a pinned sequence.
	ErrPinned = errors.New("key is pinned by an active sequence")
	// ErrEmptySequence is returned for a sequence without legs.
	ErrEmptySequence = errors.New("sequence has no legs")
)

// Key identifies what a sequence writes: a target id plus a property path.
// At most one sequence is active per key.
type Key struct {
	Target string `json:"target" yaml:"target"`
	Prop   string `json:"prop" yaml:"prop"`
}

func (k Key) String() string { return k.Target + "." + k.Prop }

// Leg is one interpolation segment ending at To after Duration seconds.
type Leg struct {
	To       float64 `json:"to" yaml:"to"`
	Duration float64 `json:"duration" yaml:"duration"`
	Ease     Ease    `json:"ease,omitempty" yaml:"ease,omitempty"`
}

// Assign is a side effect: write Value to Key once.
type Assign struct {
	Key   Key
	Value float64
}

// Sequence describes one timed task over a single property. A pass plays
// every leg in order; Repeat adds passes, and with Yoyo every other pass
// walks the legs backwards.
type Sequence struct {
	Key Key
	// From fixes the start value. When nil the live value is sampled at
	// registration.
	From   *float64
	Legs   []Leg
	Delay  float64
	Repeat int
	Yoyo   bool
	// Pinned sequences cannot be replaced or cancelled by key.
	Pinned bool

	OnStart    []Assign
	OnComplete []Assign
}

// Pass is the length of one pass over all legs.
func (s Sequence) Pass() float64 {
	total := 0.0
	for _, l := range s.Legs {
		if l.Duration > 0 {
			total += l.Duration
		}
	}
	return total
}

func (s Sequence) passes() int {
	if s.Repeat < 0 {
		return 1
	}
	return s.Repeat + 1
}

// Duration is the total lifetime including delay and repeats.
func (s Sequence) Duration() float64 {
	return s.Delay + s.Pass()*float64(s.passes())
}

// Tween is a single-leg sequence toward to.
func Tween(key Key, to, duration float64, ease Ease) Sequence {
	return Sequence{Key: key, Legs: []Leg{{To: to, Duration: duration, Ease: ease}}}
}

// FromTo is a single-leg sequence with a fixed start value.
func FromTo(key Key, from, to, duration float64, ease Ease) Sequence {
	s := Tween(key, to, duration, ease)
	s.From = &from
	return s
}

// Phase is a sequence lifecycle state.
type Phase int

const (
	Pending Phase = iota
	Forward
	Reversing
	Complete
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Forward:
		return "forward"
	case Reversing:
		return "reversing"
	case Complete:
		return "complete"
	}
	return "unknown"
}

// Target is a writable node.
type Target interface {
	Get(prop string) (float64, bool)
	Set(prop string, v float64) bool
}

// Resolver finds mounted targets by id.
type Resolver interface {
	Resolve(target string) (Target, bool)
}

type ResolverFunc func(target string) (Target, bool)

func (f ResolverFunc) Resolve(target string) (Target, bool) { return f(target) }
