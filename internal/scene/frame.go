package scene

import "github.com/coreman2200/funtimes-inception/internal/shader"

// NoPanel marks a frame with no topic panel open.
const NoPanel = -1

type StairState struct {
	Index int `json:"index"`
	Transform
}

type CameraState struct {
	Position Vec3    `json:"position"`
	Rotation Vec3    `json:"rotation"`
	FOV      float64 `json:"fov"`
}

// Frame is the read-only snapshot handed to render surfaces once per tick.
type Frame struct {
	ID       uint64        `json:"frame_id"`
	Elapsed  float64       `json:"elapsed"`
	Stairs   []StairState  `json:"stairs"`
	Stage    Transform     `json:"stage"`
	Camera   CameraState   `json:"camera"`
	Stars    Stars         `json:"stars"`
	Ripple   Transform     `json:"ripple"`
	Uniforms shader.Values `json:"uniforms"`
	Panel    int           `json:"panel"`
}

// Snapshot copies the live state; surfaces never see scene pointers.
func (s *Scene) Snapshot(id uint64, elapsed float64) Frame {
	f := Frame{
		ID:      id,
		Elapsed: elapsed,
		Stairs:  make([]StairState, len(s.Stairs)),
		Stage:   s.Stage.Transform,
		Camera: CameraState{
			Position: s.Camera.Eye(),
			Rotation: s.Camera.Rotation,
			FOV:      s.Camera.FOV,
		},
		Stars:  *s.Stars,
		Ripple: s.Ripple.Transform,
		Panel:  NoPanel,
	}
	for i, st := range s.Stairs {
		f.Stairs[i] = StairState{Index: st.Index, Transform: st.Transform}
	}
	return f
}
