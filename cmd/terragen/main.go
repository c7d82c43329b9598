// Command terragen generates a terrain data set and writes the resulting
// rasters and object list to a run directory.
//
// Usage:
//
//	terragen <width> <height> <threads> [run_id] [seed]
//
// Optional settings are read from terragen.toml in the working directory; a
// default file is written when none exists.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml"

	"github.com/df-mc/terragen/terrain"
	"github.com/df-mc/terragen/terrain/render"
)

func main() {
	log := slog.Default()
	if err := run(os.Args[1:], log); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func run(args []string, log *slog.Logger) error {
	if len(args) < 3 || len(args) > 5 {
		return errors.New("usage: terragen <width> <height> <threads> [run_id] [seed]")
	}
	width, err := strconv.Atoi(args[0])
	if err != nil || width <= 0 {
		return fmt.Errorf("invalid width %q", args[0])
	}
	height, err := strconv.Atoi(args[1])
	if err != nil || height <= 0 {
		return fmt.Errorf("invalid height %q", args[1])
	}
	threads, err := strconv.Atoi(args[2])
	if err != nil || threads < 0 {
		return fmt.Errorf("invalid thread count %q", args[2])
	}

	runID := uuid.New().String()
	if len(args) >= 4 && args[3] != "" {
		runID = args[3]
	}
	var seed int64
	seedSet := false
	if len(args) == 5 {
		seed, err = strconv.ParseInt(args[4], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed %q", args[4])
		}
		seedSet = true
	}

	uc, err := readConfig("terragen.toml", log)
	if err != nil {
		return err
	}
	conf, err := uc.Config(log)
	if err != nil {
		return err
	}
	conf.W, conf.H, conf.Threads = width, height, threads
	if seedSet {
		conf.Seed = seed
	}

	outDir := filepath.Join(uc.Output.Folder, runID)
	conf.Sink = render.DirSink{Dir: outDir}
	conf.Metrics = terrain.NewMetrics()

	res, err := terrain.Run(conf)
	if err != nil {
		return err
	}
	log.Info("Run complete.",
		"run_id", runID,
		"out", outDir,
		"objects", len(res.Objects),
		"river_cells", res.RiverCells,
		"eroded", res.ErosionStats.TotalEroded,
		"deposited", res.ErosionStats.TotalDeposited)
	return nil
}

// readConfig reads a TOML user configuration, creating one with default
// values if the file does not exist.
func readConfig(path string, log *slog.Logger) (terrain.UserConfig, error) {
	c := terrain.DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return c, fmt.Errorf("read config: %w", err)
		}
		encoded, err := toml.Marshal(c)
		if err != nil {
			return c, fmt.Errorf("encode default config: %w", err)
		}
		if err := os.WriteFile(path, encoded, 0644); err != nil {
			return c, fmt.Errorf("write default config: %w", err)
		}
		log.Info("Wrote default configuration.", "path", path)
		return c, nil
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}
