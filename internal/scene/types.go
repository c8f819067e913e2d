package scene

import "strings"

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Color struct {
	R float32 `json:"r"`
	G float32 `json:"g"`
	B float32 `json:"b"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// axis returns the address of the named component ("x","y","z").
func (v *Vec3) axis(name string) *float64 {
	switch name {
	case "x":
		return &v.X
	case "y":
		return &v.Y
	case "z":
		return &v.Z
	}
	return nil
}

// Transform is the live, renderable state of a scene node.
type Transform struct {
	Position Vec3  `json:"position"`
	Rotation Vec3  `json:"rotation"`
	Scale    Vec3  `json:"scale"`
	Emissive Color `json:"emissive"`
}

// field resolves a property path such as "rotation.x" or "scale.z".
func (t *Transform) field(prop string) *float64 {
	group, ax, ok := strings.Cut(prop, ".")
	if !ok {
		return nil
	}
	switch group {
	case "position":
		return t.Position.axis(ax)
	case "rotation":
		return t.Rotation.axis(ax)
	case "scale":
		return t.Scale.axis(ax)
	}
	return nil
}

func (t *Transform) Get(prop string) (float64, bool) {
	if f := t.field(prop); f != nil {
		return *f, true
	}
	return 0, false
}

func (t *Transform) Set(prop string, v float64) bool {
	f := t.field(prop)
	if f == nil {
		return false
	}
	*f = v
	return true
}

func unitScale() Vec3 { return Vec3{1, 1, 1} }
