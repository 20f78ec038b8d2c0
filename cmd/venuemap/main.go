// Command venuemap opens an interactive viewer for a venue seating map.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"strconv"

	"gioui.org/app"
	"gioui.org/unit"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/elektrokombinacija/venuemap/internal/config"
	"github.com/elektrokombinacija/venuemap/internal/imageload"
	"github.com/elektrokombinacija/venuemap/internal/logging"
	"github.com/elektrokombinacija/venuemap/internal/scene"
	"github.com/elektrokombinacija/venuemap/internal/vis"
)

func main() {
	// A missing .env is fine; the environment and flags still apply.
	_ = godotenv.Load()

	pretty, _ := strconv.ParseBool(os.Getenv("VENUEMAP_LOG_PRETTY"))
	configPath := flag.String("config", os.Getenv("VENUEMAP_CONFIG"), "map configuration YAML")
	gradesPath := flag.String("grades", "", "grade list YAML")
	level := flag.String("log-level", os.Getenv("VENUEMAP_LOG_LEVEL"), "log level")
	flag.BoolVar(&pretty, "log-pretty", pretty, "human-readable logs")
	flag.Parse()

	logger := logging.New(logging.Config{Level: *level, Pretty: pretty})
	logging.SetGlobal(logger)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("load config")
		}
		cfg = *loaded
		cfg.Path = resolve(filepath.Dir(*configPath), cfg.Path)
	}

	opts := vis.Options{
		Config: &cfg,
		Loader: imageload.New(nil, logger),
		Logger: logger,
	}
	if *gradesPath != "" {
		gf, err := scene.LoadGrades(*gradesPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *gradesPath).Msg("load grades")
		}
		opts.Grades = gf.Grades
		opts.GradeMapWidth = gf.MapWidth
	}
	log.Info().Int("grades", len(opts.Grades)).Strs("background", cfg.Path).Msg("starting viewer")

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("Venue Map"),
			app.Size(unit.Dp(1280), unit.Dp(860)),
		)

		application := vis.NewApp(window, opts)
		if err := application.Run(window); err != nil {
			log.Fatal().Err(err).Msg("viewer stopped")
		}
		os.Exit(0)
	}()
	app.Main()
}

// resolve makes relative image paths relative to the config directory.
func resolve(dir string, paths config.Paths) config.Paths {
	out := make(config.Paths, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) {
			out[i] = p
			continue
		}
		out[i] = filepath.Join(dir, p)
	}
	return out
}
