package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 12, c.Objects.Count)
	assert.Equal(t, 0.15, c.Motion.Amplitude)
	assert.Equal(t, "classic", c.Effects.Variant)

	o := c.Scene()
	assert.Equal(t, 12, o.Layout.Count)
	assert.Equal(t, 60.0, o.FOV)
	assert.Equal(t, -1.0, o.StageY)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inception.yaml")
	doc := `
objects:
  count: 8
motion:
  amplitude: 0.3
effects:
  variant: impact
  shake:
    strength: 0.5
led:
  driver: console
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Objects.Count)
	assert.Equal(t, 4.0, c.Objects.Radius)
	assert.Equal(t, 0.3, c.Motion.Amplitude)
	assert.Equal(t, 1.5, c.Motion.Speed)
	assert.Equal(t, "impact", c.Effects.Variant)
	assert.Equal(t, 0.5, c.Effects.Shake.Strength)
	assert.Equal(t, 0.08, c.Effects.Shake.Out)
	assert.Equal(t, "console", c.LED.Driver)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	c := Default()
	c.Server.Addr = ":9999"
	c.Effects.Bend.Duration = 2
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"fps":      func(c *Config) { c.Server.FPS = 0 },
		"count":    func(c *Config) { c.Objects.Count = 0 },
		"fov":      func(c *Config) { c.Camera.FOV = 200 },
		"ease":     func(c *Config) { c.Effects.Warp.Ease = "elastic" },
		"duration": func(c *Config) { c.Effects.Bend.Duration = 0 },
		"shake":    func(c *Config) { c.Effects.Shake.Back = 0 },
		"variant":  func(c *Config) { c.Effects.Variant = "nope" },
		"unknown":  func(c *Config) { c.Effects.Variants["classic"] = []string{"spin"} },
		"led":      func(c *Config) { c.LED.Driver = "pwm" },
		"bright":   func(c *Config) { c.LED.Brightness = 2 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("objects: [1,2"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestFlagsSeedThenFileOverrides(t *testing.T) {
	assert.Equal(t, Default(), Flags{}.Seed())

	f := Flags{Addr: ":9090", FPS: 30, Variant: "impact", LED: "console"}
	seeded := f.Seed()
	assert.Equal(t, ":9090", seeded.Server.Addr)
	assert.Equal(t, 30, seeded.Server.FPS)
	assert.Equal(t, "impact", seeded.Effects.Variant)
	assert.Equal(t, "console", seeded.LED.Driver)

	path := filepath.Join(t.TempDir(), "inception.yaml")
	doc := `
server:
  fps: 50
objects:
  count: 6
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	c, err := f.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, c.Server.FPS, "file wins where it sets a value")
	assert.Equal(t, ":9090", c.Server.Addr, "flag kept where the file is silent")
	assert.Equal(t, "impact", c.Effects.Variant)
	assert.Equal(t, "console", c.LED.Driver)
	assert.Equal(t, 6, c.Objects.Count)

	_, err = f.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
