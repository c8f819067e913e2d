package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/coreman2200/funtimes-inception/internal/config"
	diag "github.com/coreman2200/funtimes-inception/internal/diagnostics"
	"github.com/coreman2200/funtimes-inception/internal/led"
	"github.com/coreman2200/funtimes-inception/internal/orchestrator"
	"github.com/coreman2200/funtimes-inception/internal/topics"
	"github.com/coreman2200/funtimes-inception/internal/tui"
	"github.com/coreman2200/funtimes-inception/internal/ws"
)

// panels fans panel notifications out to every adapter.
type panels []orchestrator.Panel

func (p panels) Open(id int) {
	for _, x := range p {
		x.Open(id)
	}
}

func (p panels) Close() {
	for _, x := range p {
		x.Close()
	}
}

func main() {
	// ---- Flags (config.yaml overrides where set) ----
	var (
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		fps        = flag.Int("fps", 60, "target frames per second")
		variant    = flag.String("variant", "", "effect variant: classic | impact")
		ledDriver  = flag.String("led", "", "LED mirror: spi | console | off")
		ledTest    = flag.String("ledtest", "", "LED wiring check before start: index_sweep | rgb_channels")
		topicsPath = flag.String("topics", "", "path to a topics yaml list")
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		useTUI     = flag.Bool("tui", false, "show the terminal preview")
		debug      = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	// ---- Config: flags seed it, config.yaml overrides where set ----
	fl := config.Flags{
		Addr: *addr, FPS: *fps, Variant: *variant, LED: *ledDriver,
		Topics: *topicsPath, TUI: *useTUI, Debug: *debug,
	}
	cfg, err := fl.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
		cfg = fl.Seed()
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	store := topics.Default()
	if cfg.Topics.Path != "" {
		if s, err := topics.Load(cfg.Topics.Path); err != nil {
			log.Warn().Err(err).Str("path", cfg.Topics.Path).Msg("topics load failed; using built-in list")
		} else {
			store = s
		}
	}

	// ---- Terminal preview owns stdout, so logs stay on stderr ----
	var view *tui.View
	var screen tcell.Screen
	if cfg.TUI {
		screen, err = tcell.NewScreen()
		if err == nil {
			err = screen.Init()
		}
		if err != nil {
			log.Warn().Err(err).Msg("terminal preview unavailable")
			screen = nil
		}
	}

	// ---- Orchestrator + loop; the hub needs the loop, the loop needs the hub ----
	ps := panels{}
	orch, err := orchestrator.New(orchestrator.Options{
		Config: cfg,
		Topics: store,
		Panel:  &ps,
		Log:    log.Logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("orchestrator")
	}
	loop := orchestrator.NewLoop(orch, cfg.Server.FPS, 256)

	hub := ws.NewHub(store, loop)
	ps = append(ps, hub)
	orch.AddSurface(hub)

	if screen != nil {
		view = tui.New(screen, store, loop)
		ps = append(ps, view)
		orch.AddSurface(view)
	}

	// ---- LED mirror ----
	mirror, err := led.Open(cfg.LED, cfg.Objects.Count, screen == nil)
	switch {
	case errors.Is(err, led.ErrDisabled):
	case errors.Is(err, led.ErrConsoleBusy):
		hub.Diag(diag.Diagnostic{Severity: diag.Warn, Code: diag.LEDFallback, Summary: "LED console mirror skipped; terminal preview owns stdout"})
	case err != nil:
		hub.Diag(diag.Diagnostic{Severity: diag.Warn, Code: diag.LEDFallback, Summary: "LED mirror failed", Detail: err.Error()})
	default:
		if !mirror.SPI && cfg.LED.Driver == "spi" {
			hub.Diag(diag.Diagnostic{Severity: diag.Info, Code: diag.LEDFallback, Summary: "LED mirror on console"})
		}
		mirror.Report = hub.Diag
		if *ledTest != "" {
			if err := led.Calibrate(context.Background(), mirror, led.Pattern(*ledTest), cfg.Objects.Count, 150*time.Millisecond); err != nil {
				log.Warn().Err(err).Msg("led test")
			}
		}
		orch.AddSurface(mirror)
		defer mirror.Close()
	}

	// ---- HTTP ----
	mux := http.NewServeMux()
	hub.Routes(mux)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      withCORS(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ---- Run until a signal arrives or any part fails ----
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return loop.Run(ctx) })
	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.Addr).Str("variant", cfg.Effects.Variant).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	})
	if view != nil {
		g.Go(func() error { return view.Run(ctx, stop) })
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("stopped")
		os.Exit(1)
	}
	log.Info().Msg("shut down")
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
