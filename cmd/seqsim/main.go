package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-inception/internal/config"
	"github.com/coreman2200/funtimes-inception/internal/orchestrator"
	"github.com/coreman2200/funtimes-inception/internal/scene"
	"github.com/coreman2200/funtimes-inception/internal/script"
)

func main() {
	var (
		scriptPath = flag.String("script", "", "path to a yaml/json selection script")
		configPath = flag.String("config", "", "optional config.yaml")
		variant    = flag.String("variant", "", "override effects.variant")
		fps        = flag.Int("fps", 60, "simulation frames per second")
		every      = flag.Int("every", 6, "print every Nth frame")
		debug      = flag.Bool("debug", false, "log scheduler detail")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *scriptPath == "" {
		log.Fatal().Msg("provide -script path to a selection script")
	}
	sc, err := script.Load(*scriptPath)
	if err != nil {
		log.Fatal().Err(err).Msg("script")
	}

	cfg := config.Default()
	if *configPath != "" {
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatal().Err(err).Msg("config")
		}
	}
	if *variant != "" {
		cfg.Effects.Variant = *variant
	}

	o, err := orchestrator.New(orchestrator.Options{Config: cfg, Log: log.Logger})
	if err != nil {
		log.Fatal().Err(err).Msg("orchestrator")
	}

	if *every <= 0 {
		*every = 1
	}
	fmt.Println("frame\tt\tcam.x\tcam.y\tcam.z\troll\tfov\tbend\tstars\twarp\tripple\tpanel")
	n := script.Run(o, sc, *fps, func(f scene.Frame) {
		if (f.ID-1)%uint64(*every) != 0 {
			return
		}
		c := f.Camera
		fmt.Printf("%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.2f\t%.3f\t%.2f\t%t\t%.2f\t%d\n",
			f.ID, f.Elapsed, c.Position.X, c.Position.Y, c.Position.Z, c.Rotation.Z,
			c.FOV, f.Stage.Rotation.X, f.Stars.Size, f.Stars.Warping, f.Ripple.Scale.X, f.Panel)
	})
	log.Info().Int("frames", n).Float64("duration", sc.Duration).Msg("done")
}
