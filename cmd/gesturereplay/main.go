// Command gesturereplay replays scripted input against the map engine on
// virtual time and writes the camera state after each step as CSV.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/elektrokombinacija/venuemap/internal/config"
	"github.com/elektrokombinacija/venuemap/internal/logging"
	"github.com/elektrokombinacija/venuemap/internal/replay"
	"github.com/elektrokombinacija/venuemap/internal/scene"
)

func main() {
	_ = godotenv.Load()

	pretty, _ := strconv.ParseBool(os.Getenv("VENUEMAP_LOG_PRETTY"))
	configPath := flag.String("config", os.Getenv("VENUEMAP_CONFIG"), "map configuration YAML")
	gradesPath := flag.String("grades", "", "grade list YAML")
	outputFile := flag.String("output", "", "output CSV file (default stdout)")
	level := flag.String("log-level", os.Getenv("VENUEMAP_LOG_LEVEL"), "log level")
	flag.BoolVar(&pretty, "log-pretty", pretty, "human-readable logs")
	flag.Parse()

	logger := logging.New(logging.Config{Level: *level, Pretty: pretty})
	logging.SetGlobal(logger)

	if flag.NArg() == 0 {
		log.Fatal().Msg("usage: gesturereplay [flags] script.yaml...")
	}

	runner := &replay.Runner{Config: config.Default(), Log: logger}
	if *configPath != "" {
		cfg, err := config.LoadFile(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("load config")
		}
		runner.Config = *cfg
	}
	if *gradesPath != "" {
		gf, err := scene.LoadGrades(*gradesPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *gradesPath).Msg("load grades")
		}
		runner.Grades = gf.Grades
		runner.GradeMapWidth = gf.MapWidth
	}

	failed, err := writeReport(*outputFile, flag.Args(), runner)
	if err != nil {
		log.Fatal().Err(err).Msg("write report")
	}
	if failed > 0 {
		log.Error().Int("failed", failed).Msg("some scripts failed")
		os.Exit(1)
	}
}

// writeReport replays every script into one CSV written to path, or stdout
// when path is empty. The output is closed before it returns, so callers may
// exit straight after. failed counts scripts that did not load or replay.
func writeReport(path string, scripts []string, runner *replay.Runner) (failed int, err error) {
	var out io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return 0, fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
		}()
		out = f
	}
	return replayAll(out, scripts, runner)
}

func replayAll(out io.Writer, scripts []string, runner *replay.Runner) (int, error) {
	writer := csv.NewWriter(out)
	if err := writer.Write(replay.Header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	failed := 0
	for _, path := range scripts {
		script, err := replay.LoadFile(path)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("load script")
			failed++
			continue
		}
		if script.Name == "" {
			script.Name = path
		}
		rows, err := runner.Run(script)
		for _, r := range rows {
			if werr := writer.Write(r.Record()); werr != nil {
				return failed, fmt.Errorf("write row: %w", werr)
			}
		}
		if err != nil {
			log.Error().Err(err).Str("script", script.Name).Msg("replay failed")
			failed++
			continue
		}
		log.Info().Str("script", script.Name).Int("rows", len(rows)).Msg("replayed")
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return failed, fmt.Errorf("flush output: %w", err)
	}
	return failed, nil
}
