package scene

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Target ids understood by Lookup. Stairs are addressed as "stair/<index>".
const (
	StageID  = "stage"
	CameraID = "camera"
	StarsID  = "stars"
	RippleID = "ripple"

	stairPrefix = "stair/"
)

func StairID(i int) string { return stairPrefix + strconv.Itoa(i) }

// Node is anything a sequence can write to.
type Node interface {
	Get(prop string) (float64, bool)
	Set(prop string, v float64) bool
}

// Stair is one selectable step of the spiral. Angle and BaseY are fixed at
// construction; Spin is the accumulated drift carried between frames.
type Stair struct {
	Index int     `json:"index"`
	Angle float64 `json:"-"`
	BaseY float64 `json:"-"`
	Spin  float64 `json:"-"`
	Transform
}

// Stage is the group every stair hangs from; bending rotates it.
type Stage struct {
	Transform
}

type Camera struct {
	Position Vec3    `json:"position"`
	Rotation Vec3    `json:"rotation"`
	FOV      float64 `json:"fov"`
	// Dolly and Lift are intro offsets along z and y, zero at rest.
	Dolly float64 `json:"dolly"`
	Lift  float64 `json:"lift"`
}

// Eye is the effective camera position including intro offsets.
func (c *Camera) Eye() Vec3 { return c.Position.Add(Vec3{0, c.Lift, c.Dolly}) }

func (c *Camera) field(prop string) *float64 {
	switch prop {
	case "fov":
		return &c.FOV
	case "dolly":
		return &c.Dolly
	case "lift":
		return &c.Lift
	}
	group, ax, ok := strings.Cut(prop, ".")
	if !ok {
		return nil
	}
	switch group {
	case "position":
		return c.Position.axis(ax)
	case "rotation":
		return c.Rotation.axis(ax)
	}
	return nil
}

func (c *Camera) Get(prop string) (float64, bool) {
	if f := c.field(prop); f != nil {
		return *f, true
	}
	return 0, false
}

func (c *Camera) Set(prop string, v float64) bool {
	f := c.field(prop)
	if f == nil {
		return false
	}
	*f = v
	return true
}

// Stars is the background point field. Warping is exposed to sequences as a
// 0/1 scalar so it can be toggled by side effects.
type Stars struct {
	Size    float64 `json:"size"`
	Warping bool    `json:"warping"`
}

func (s *Stars) Get(prop string) (float64, bool) {
	switch prop {
	case "size":
		return s.Size, true
	case "warping":
		if s.Warping {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func (s *Stars) Set(prop string, v float64) bool {
	switch prop {
	case "size":
		s.Size = v
	case "warping":
		s.Warping = v >= 0.5
	default:
		return false
	}
	return true
}

// Ripple is the plane scaled out from nothing on selection.
type Ripple struct {
	Transform
}

// Layout places the stairs along the spiral.
type Layout struct {
	Count        int
	Radius       float64
	AngleStep    float64
	VerticalStep float64
}

type Options struct {
	Layout     Layout
	StageY     float64
	CameraRest Vec3
	FOV        float64
	StarSize   float64
}

// Scene owns every writable node. Nodes can be detached (unmounted), after
// which Lookup reports them missing.
type Scene struct {
	Stairs []*Stair
	Stage  *Stage
	Camera *Camera
	Stars  *Stars
	Ripple *Ripple

	detached map[string]bool
}

func New(o Options) *Scene {
	s := &Scene{
		Stage:    &Stage{Transform{Position: Vec3{0, o.StageY, 0}, Scale: unitScale()}},
		Camera:   &Camera{Position: o.CameraRest, FOV: o.FOV},
		Stars:    &Stars{Size: o.StarSize},
		Ripple:   &Ripple{Transform{Rotation: Vec3{X: -math.Pi / 2}}},
		detached: map[string]bool{},
	}
	for i := 0; i < o.Layout.Count; i++ {
		angle := float64(i) * o.Layout.AngleStep
		y := float64(i) * o.Layout.VerticalStep
		s.Stairs = append(s.Stairs, &Stair{
			Index: i,
			Angle: angle,
			BaseY: y,
			Transform: Transform{
				Position: Vec3{math.Cos(angle) * o.Layout.Radius, y, math.Sin(angle) * o.Layout.Radius},
				Rotation: Vec3{Y: angle},
				Scale:    unitScale(),
			},
		})
	}
	return s
}

// Lookup resolves a target id to a mounted node.
func (s *Scene) Lookup(id string) (Node, bool) {
	if s.detached[id] {
		return nil, false
	}
	switch id {
	case StageID:
		return s.Stage, s.Stage != nil
	case CameraID:
		return s.Camera, s.Camera != nil
	case StarsID:
		return s.Stars, s.Stars != nil
	case RippleID:
		return s.Ripple, s.Ripple != nil
	}
	if rest, ok := strings.CutPrefix(id, stairPrefix); ok {
		i, err := strconv.Atoi(rest)
		if err != nil || i < 0 || i >= len(s.Stairs) {
			return nil, false
		}
		return s.Stairs[i], true
	}
	return nil, false
}

// Detach unmounts a node; writes to it are skipped until Attach.
func (s *Scene) Detach(id string) { s.detached[id] = true }

func (s *Scene) Attach(id string) { delete(s.detached, id) }

// DetachAll unmounts every node, used on teardown.
func (s *Scene) DetachAll() {
	for _, id := range s.IDs() {
		s.detached[id] = true
	}
}

// IDs lists every target id in a stable order.
func (s *Scene) IDs() []string {
	ids := []string{StageID, CameraID, StarsID, RippleID}
	for i := range s.Stairs {
		ids = append(ids, StairID(i))
	}
	sort.Strings(ids)
	return ids
}

func (s *Scene) String() string {
	return fmt.Sprintf("scene{stairs=%d detached=%d}", len(s.Stairs), len(s.detached))
}
