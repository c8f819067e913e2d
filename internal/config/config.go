package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/coreman2200/funtimes-inception/internal/effects"
	"github.com/coreman2200/funtimes-inception/internal/motion"
	"github.com/coreman2200/funtimes-inception/internal/scene"
	"github.com/coreman2200/funtimes-inception/internal/sequence"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

type Server struct {
	Addr string `yaml:"addr"` // e.g. :8080
	FPS  int    `yaml:"fps"`
}

type Objects struct {
	Count        int     `yaml:"count"`
	Radius       float64 `yaml:"radius"`
	AngleStep    float64 `yaml:"angle_step"`
	VerticalStep float64 `yaml:"vertical_step"`
}

type Camera struct {
	Rest scene.Vec3 `yaml:"rest"`
	FOV  float64    `yaml:"fov"`
}

type Stars struct {
	Size       float64 `yaml:"size"`
	Factor     float64 `yaml:"factor"`
	WarpFactor float64 `yaml:"warp_factor"`
}

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0, "" picks the first port
	SpeedHz int    `yaml:"speed_hz"` // e.g. 2400000
}

// LED configures the optional strip mirroring each stair's glow.
type LED struct {
	Driver     string  `yaml:"driver"` // "spi" | "console" | "off"
	Brightness float64 `yaml:"brightness"`
	FPS        int     `yaml:"fps"`
	SPI        SPI     `yaml:"spi,omitempty"`
	Gamma      float64 `yaml:"gamma,omitempty"`
	WhiteCap   float64 `yaml:"white_cap,omitempty"`
	BudgetMA   float64 `yaml:"budget_ma,omitempty"` // 0 disables the current limiter
}

type Topics struct {
	Path string `yaml:"path,omitempty"` // empty uses the built-in list
}

type Config struct {
	Server  Server         `yaml:"server"`
	Objects Objects        `yaml:"objects"`
	StageY  float64        `yaml:"stage_y"`
	Motion  motion.Field   `yaml:"motion"`
	Camera  Camera         `yaml:"camera"`
	Stars   Stars          `yaml:"stars"`
	Effects effects.Params `yaml:"effects"`
	LED     LED            `yaml:"led"`
	Topics  Topics         `yaml:"topics"`
	TUI     bool           `yaml:"tui"`
	Debug   bool           `yaml:"debug"`
}

func Default() *Config {
	return &Config{
		Server:  Server{Addr: ":8080", FPS: 60},
		Objects: Objects{Count: 12, Radius: 4, AngleStep: 0.4, VerticalStep: 0.3},
		StageY:  -1,
		Motion:  motion.Default(),
		Camera:  Camera{Rest: scene.Vec3{X: 0, Y: 2, Z: 10}, FOV: 60},
		Stars:   Stars{Size: 1, Factor: 4, WarpFactor: 6},
		Effects: effects.DefaultParams(),
		LED:     LED{Driver: "off", Brightness: 0.5, FPS: 30, SPI: SPI{SpeedHz: 2400000}, Gamma: 2.2, WhiteCap: 3},
	}
}

// Scene converts the layout sections into scene construction options.
func (c *Config) Scene() scene.Options {
	return scene.Options{
		Layout: scene.Layout{
			Count:        c.Objects.Count,
			Radius:       c.Objects.Radius,
			AngleStep:    c.Objects.AngleStep,
			VerticalStep: c.Objects.VerticalStep,
		},
		StageY:     c.StageY,
		CameraRest: c.Camera.Rest,
		FOV:        c.Camera.FOV,
		StarSize:   c.Stars.Size,
	}
}

// Load reads path over the defaults, so a partial file only overrides what
// it names.
func Load(path string) (*Config, error) { return load(path, Default()) }

// Flags are command-line values. They seed the config and a config file then
// overrides whatever it sets. Zero values are left at the defaults.
type Flags struct {
	Addr    string
	FPS     int
	Variant string
	LED     string
	Topics  string
	TUI     bool
	Debug   bool
}

// Seed returns the defaults with every non-zero flag applied.
func (f Flags) Seed() *Config {
	c := Default()
	if f.Addr != "" {
		c.Server.Addr = f.Addr
	}
	if f.FPS > 0 {
		c.Server.FPS = f.FPS
	}
	if f.Variant != "" {
		c.Effects.Variant = f.Variant
	}
	if f.LED != "" {
		c.LED.Driver = f.LED
	}
	if f.Topics != "" {
		c.Topics.Path = f.Topics
	}
	c.TUI, c.Debug = f.TUI, f.Debug
	return c
}

// Load reads path over the flag-seeded config.
func (f Flags) Load(path string) (*Config, error) { return load(path, f.Seed()) }

func load(path string, c *Config) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks ranges and names. It does not clamp.
func (c *Config) Validate() error {
	if c.Server.FPS <= 0 {
		return invalid("server.fps must be positive, got %d", c.Server.FPS)
	}
	if c.Objects.Count <= 0 {
		return invalid("objects.count must be positive, got %d", c.Objects.Count)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return invalid("camera.fov out of range: %v", c.Camera.FOV)
	}
	e := c.Effects
	tweens := map[string]effects.Tween{
		"bend": e.Bend, "warp": e.Warp, "fov": e.FOV, "pulse": e.Pulse, "ripple": e.Ripple.Tween,
	}
	for name, t := range tweens {
		if t.Duration <= 0 {
			return invalid("effects.%s.duration must be positive", name)
		}
		if !t.Ease.Known() {
			return invalid("effects.%s.ease: unknown %q", name, t.Ease)
		}
		if t.Repeat < 0 {
			return invalid("effects.%s.repeat must not be negative", name)
		}
	}
	if e.Shake.Out <= 0 || e.Shake.Back <= 0 || e.Shake.Settle <= 0 {
		return invalid("effects.shake leg durations must be positive")
	}
	for _, ease := range []sequence.Ease{e.Shake.Ease, e.Intro.Ease} {
		if !ease.Known() {
			return invalid("unknown ease %q", ease)
		}
	}
	if e.Intro.Duration <= 0 {
		return invalid("effects.intro.duration must be positive")
	}
	if err := effects.NewCatalog(e, c.Camera.Rest).Validate(); err != nil {
		return invalid("%v", err)
	}
	if _, ok := e.Variants[e.Variant]; !ok && e.Variants != nil {
		return invalid("effects.variant %q is not defined", e.Variant)
	}
	switch c.LED.Driver {
	case "", "off", "spi", "console":
	default:
		return invalid("led.driver %q, want spi|console|off", c.LED.Driver)
	}
	if c.LED.Brightness < 0 || c.LED.Brightness > 1 {
		return invalid("led.brightness out of [0,1]: %v", c.LED.Brightness)
	}
	if c.LED.Gamma < 0 || c.LED.WhiteCap < 0 || c.LED.BudgetMA < 0 {
		return invalid("led gamma, white_cap and budget_ma must be >= 0")
	}
	return nil
}
