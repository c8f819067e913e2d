// Package led mirrors each stair's glow onto an addressable LED strip, one
// pixel per stair, or onto the console when no SPI port is present.
package led

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/devices/v3/screen1d"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-inception/internal/clock"
	"github.com/coreman2200/funtimes-inception/internal/config"
	diag "github.com/coreman2200/funtimes-inception/internal/diagnostics"
	"github.com/coreman2200/funtimes-inception/internal/scene"
)

var (
	ErrDisabled = errors.New("led mirror disabled")
	// ErrConsoleBusy is returned when the console mirror would share stdout
	// with another writer.
	ErrConsoleBusy = errors.New("console in use; led console mirror skipped")
)

// Mirror is a render surface writing one pixel per stair.
type Mirror struct {
	mu         sync.Mutex
	drawer     display.Drawer
	port       io.Closer
	img        *image.NRGBA
	brightness float64
	gap        time.Duration
	last       time.Time
	clock      clock.TimeProvider
	glow       []scene.Color
	failing    bool
	SPI        bool
	// Limit shapes colours before brightness; nil writes them as is.
	Limit *Limit
	// Report receives an LED.WRITE diagnostic when writes start failing.
	Report func(diag.Diagnostic)
}

// NewMirror wraps an existing drawer. fps caps the write rate; 0 writes
// every frame.
func NewMirror(d display.Drawer, brightness float64, fps int, tp clock.TimeProvider) *Mirror {
	if tp == nil {
		tp = clock.SystemTime{}
	}
	m := &Mirror{
		drawer:     d,
		img:        image.NewNRGBA(d.Bounds()),
		brightness: brightness,
		clock:      tp,
	}
	if fps > 0 {
		m.gap = time.Second / time.Duration(fps)
	}
	return m
}

func limitFor(cfg config.LED) *Limit {
	l := DefaultLimit()
	l.Gamma = cfg.Gamma
	l.BudgetMA = cfg.BudgetMA
	if cfg.WhiteCap > 0 {
		l.WhiteCap = cfg.WhiteCap
	}
	return &l
}

// Open initialises the configured driver. An spi driver without a usable
// port falls back to the console, as does an nrzled init failure. console
// reports whether stdout is free; when it is not, console mirroring returns
// ErrConsoleBusy instead.
func Open(cfg config.LED, pixels int, console bool) (*Mirror, error) {
	m, err := open(cfg, pixels, console)
	if err != nil {
		return nil, err
	}
	m.Limit = limitFor(cfg)
	return m, nil
}

func consoleMirror(cfg config.LED, pixels int, console bool) (*Mirror, error) {
	if !console {
		return nil, ErrConsoleBusy
	}
	return NewMirror(screen1d.New(&screen1d.Opts{X: pixels}), cfg.Brightness, cfg.FPS, nil), nil
}

func open(cfg config.LED, pixels int, console bool) (*Mirror, error) {
	switch cfg.Driver {
	case "", "off":
		return nil, ErrDisabled
	case "console":
		return consoleMirror(cfg, pixels, console)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	port, err := spireg.Open(cfg.SPI.Dev)
	if err != nil {
		log.Warn().Err(err).Str("dev", cfg.SPI.Dev).Msg("no SPI port; mirroring to console")
		return consoleMirror(cfg, pixels, console)
	}
	freq := physic.Frequency(cfg.SPI.SpeedHz) * physic.Hertz
	if freq == 0 {
		freq = 2400 * physic.KiloHertz
	}
	d, err := nrzled.NewSPI(port, &nrzled.Opts{NumPixels: pixels, Channels: 3, Freq: freq})
	if err != nil {
		port.Close()
		log.Warn().Err(err).Msg("nrzled init failed; mirroring to console")
		return consoleMirror(cfg, pixels, console)
	}
	_ = d.Halt()
	m := NewMirror(d, cfg.Brightness, cfg.FPS, nil)
	m.port = port
	m.SPI = true
	return m, nil
}

func scale(c float32, k float64) uint8 {
	v := float64(c) * k * 255
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// Publish draws the frame's emissive colours, skipping frames that arrive
// sooner than the configured rate allows.
func (m *Mirror) Publish(f scene.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	if m.gap > 0 && !m.last.IsZero() && now.Sub(m.last) < m.gap {
		return nil
	}
	m.last = now

	m.glow = m.glow[:0]
	for _, st := range f.Stairs {
		m.glow = append(m.glow, st.Emissive)
	}
	if m.Limit != nil {
		m.Limit.Apply(m.glow)
	}

	b := m.img.Bounds()
	for i, st := range f.Stairs {
		x := b.Min.X + st.Index
		if x >= b.Max.X {
			continue
		}
		e := m.glow[i]
		m.img.SetNRGBA(x, b.Min.Y, color.NRGBA{
			R: scale(e.R, m.brightness),
			G: scale(e.G, m.brightness),
			B: scale(e.B, m.brightness),
			A: 255,
		})
	}
	if err := m.drawer.Draw(m.drawer.Bounds(), m.img, image.Point{}); err != nil {
		err = fmt.Errorf("led draw: %w", err)
		if !m.failing && m.Report != nil {
			m.Report(diag.Diagnostic{
				Severity: diag.Err, Code: diag.LEDWrite, Summary: "LED write failed",
				Detail: err.Error(), Evidence: map[string]any{"frame": f.ID, "drawer": m.drawer.String()},
			})
		}
		m.failing = true
		return err
	}
	m.failing = false
	return nil
}

// Close blanks the strip and releases the port.
func (m *Mirror) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	err := m.drawer.Halt()
	if m.port != nil {
		if cerr := m.port.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (m *Mirror) String() string { return "led.Mirror{" + m.drawer.String() + "}" }
