// Package terrain runs the procedural terrain pipeline: plate-based
// heightmap synthesis, climate fields, hydraulic and thermal erosion, river
// extraction and carving, biome classification and object placement. A run is
// a pure batch: a Config goes in, grids and placed instances come out, with
// optional snapshots delivered through a Sink.
package terrain

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/df-mc/terragen/terrain/biome"
	"github.com/df-mc/terragen/terrain/climate"
	"github.com/df-mc/terragen/terrain/erosion"
	"github.com/df-mc/terragen/terrain/field"
	"github.com/df-mc/terragen/terrain/grid"
	"github.com/df-mc/terragen/terrain/heightmap"
	"github.com/df-mc/terragen/terrain/object"
	"github.com/df-mc/terragen/terrain/render"
	"github.com/df-mc/terragen/terrain/river"
)

var (
	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrDimensionMismatch is returned when externally supplied rasters do
	// not match the configured dimensions.
	ErrDimensionMismatch = errors.New("raster dimensions mismatch")
	// ErrNumericInvariant is returned when a stage leaves NaN or Inf in the
	// height field.
	ErrNumericInvariant = errors.New("non-finite value in height field")
)

// Config contains options for one pipeline run.
type Config struct {
	// Log is the Logger to use for logging information. If nil, Log is set
	// to slog.Default().
	Log *slog.Logger
	// W and H are the raster dimensions in cells.
	W, H int
	// Seed drives every stage. Stage configs whose own seed is zero inherit
	// it.
	Seed int64
	// Threads sizes the worker pools of the data-parallel loops. If zero,
	// the host's CPU count is used.
	Threads int
	// WorldSizeMeters scales cell size for object placement. If zero, one
	// cell maps to one metre.
	WorldSizeMeters float64

	// Heightmap, Climate, Erosion, Thermal and River tune the respective
	// stages. Zero values select the documented defaults.
	Heightmap heightmap.Config
	Climate   climate.Config
	Erosion   erosion.Params
	Thermal   erosion.ThermalParams
	River     river.Params
	// DropletFraction scales the droplet count with the cell count when
	// Erosion.NumDroplets is zero, with a floor of 1000 droplets.
	DropletFraction float64

	// Classifier tunes biome scoring. BiomeDefs overrides the built-in
	// definition library when non-nil.
	Classifier biome.Options
	BiomeDefs  []biome.Def
	// Placement configures object scattering. A nil BiomeObjects map skips
	// the placement stage.
	Placement object.Config

	// Metrics records stage durations and counters when non-nil.
	Metrics *Metrics
	// Sink receives intermediate and final rasters when non-nil.
	Sink Sink
}

// withDefaults fills unset fields and propagates the run seed into stages.
func (conf Config) withDefaults() Config {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Threads <= 0 {
		conf.Threads = runtime.NumCPU()
	}
	if conf.DropletFraction == 0 {
		conf.DropletFraction = 0.4
	}
	if conf.Heightmap.Seed == 0 {
		conf.Heightmap.Seed = conf.Seed
	}
	if conf.Climate.Seed == 0 {
		conf.Climate.Seed = conf.Seed
	}
	if conf.Erosion.WorldSeed == 0 {
		conf.Erosion.WorldSeed = conf.Seed
	}
	if conf.Erosion.NumDroplets == 0 {
		n := int(conf.DropletFraction * float64(conf.W*conf.H))
		if n < 1000 {
			n = 1000
		}
		conf.Erosion.NumDroplets = n
	}
	if conf.Placement.Seed == 0 && conf.Seed != 0 {
		conf.Placement.Seed = uint64(conf.Seed)
	}
	if conf.BiomeDefs == nil {
		conf.BiomeDefs = biome.Defaults()
	}
	return conf
}

// validate reports the first configuration problem found.
func (conf Config) validate() error {
	if conf.W <= 0 || conf.H <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidConfig, conf.W, conf.H)
	}
	if conf.DropletFraction < 0 {
		return fmt.Errorf("%w: negative droplet fraction %v", ErrInvalidConfig, conf.DropletFraction)
	}
	if conf.Heightmap.FBMBlend > 1 {
		return fmt.Errorf("%w: fbm blend %v above 1", ErrInvalidConfig, conf.Heightmap.FBMBlend)
	}
	if len(conf.BiomeDefs) == 0 {
		return fmt.Errorf("%w: empty biome definition set", ErrInvalidConfig)
	}
	return nil
}

// Result holds everything one run produced.
type Result struct {
	// RunID identifies the run in logs and output paths.
	RunID uuid.UUID

	Height      grid.Grid2D[float32]
	Temperature grid.Grid2D[float32]
	Moisture    grid.Grid2D[float32]
	FlowAccum   grid.Grid2D[float32]
	RiverMask   grid.Grid2D[uint8]
	Biomes      grid.Grid2D[biome.ID]
	Eroded      grid.Grid2D[float64]
	Deposited   grid.Grid2D[float64]
	Objects     []object.Instance

	ErosionStats erosion.Stats
	ThermalMoved float64
	RiverCells   int
}

// Run executes the pipeline. The returned Result owns its grids; Run keeps no
// state between calls.
func Run(conf Config) (*Result, error) {
	conf = conf.withDefaults()
	if err := conf.validate(); err != nil {
		return nil, err
	}
	log := conf.Log
	res := &Result{RunID: uuid.New()}
	log.Info("Starting terrain run.", "run", res.RunID, "w", conf.W, "h", conf.H, "seed", conf.Seed, "threads", conf.Threads)

	// S1: heightmap.
	start := time.Now()
	height := heightmap.Generate(conf.W, conf.H, conf.Heightmap, conf.Threads)
	if err := checkFinite(height, "heightmap"); err != nil {
		return nil, err
	}
	stageDone(conf, "heightmap", start, "digest", grid.DigestFloat32(height))
	if err := emitImage(conf, "height_initial", render.Greyscale(height)); err != nil {
		return nil, err
	}

	// S2: climate.
	start = time.Now()
	temp, moist := climate.Generate(height, conf.Climate, conf.Threads)
	stageDone(conf, "climate", start, "temp_digest", grid.DigestFloat32(temp), "moist_digest", grid.DigestFloat32(moist))
	if err := emitImage(conf, "temperature", render.Greyscale(temp)); err != nil {
		return nil, err
	}
	if err := emitImage(conf, "moisture", render.Greyscale(moist)); err != nil {
		return nil, err
	}

	// S3: hydraulic erosion, then the optional thermal pass.
	start = time.Now()
	stats, eroded, deposited := erosion.Hydraulic(height, conf.Erosion, conf.Threads)
	if err := checkFinite(height, "erosion"); err != nil {
		return nil, err
	}
	stageDone(conf, "erosion", start,
		"droplets", stats.AppliedDroplets, "eroded", stats.TotalEroded, "deposited", stats.TotalDeposited)
	conf.Metrics.Add("droplets", float64(stats.AppliedDroplets))
	if err := emitImage(conf, "erosion_removed", render.Normalized(eroded)); err != nil {
		return nil, err
	}
	if err := emitImage(conf, "erosion_deposited", render.Normalized(deposited)); err != nil {
		return nil, err
	}

	if conf.Thermal.Iterations > 0 {
		start = time.Now()
		moved := erosion.Thermal(height, conf.Thermal, conf.Threads)
		if err := checkFinite(height, "thermal"); err != nil {
			return nil, err
		}
		stageDone(conf, "thermal", start, "moved", moved)
		res.ThermalMoved = moved
	}
	// Deposition can lift a cell above 1; keep the height field in [0, 1]
	// for the later stages.
	for i, v := range height.Data() {
		if v > 1 {
			height.Data()[i] = 1
		}
	}
	if err := emitImage(conf, "height_eroded", render.Greyscale(height)); err != nil {
		return nil, err
	}

	// S4: rivers.
	start = time.Now()
	network := river.Generate(height, conf.River, conf.Threads)
	river.Carve(height, network, conf.River, conf.Threads)
	if err := checkFinite(height, "rivers"); err != nil {
		return nil, err
	}
	riverCells := 0
	for _, v := range network.Mask.Data() {
		if v != 0 {
			riverCells++
		}
	}
	stageDone(conf, "rivers", start, "river_cells", riverCells)
	conf.Metrics.Add("river_cells", float64(riverCells))
	if err := emitImage(conf, "river_mask", render.Mask(network.Mask)); err != nil {
		return nil, err
	}
	if err := emitImage(conf, "height_carved", render.Greyscale(height)); err != nil {
		return nil, err
	}

	// S5: biomes.
	start = time.Now()
	biomes := biome.Classify(height, temp, moist, network.Mask, conf.BiomeDefs, conf.Classifier, conf.Threads)
	stageDone(conf, "biomes", start, "digest", grid.DigestUint16(biomes))
	if err := emitImage(conf, "biomes", render.Biomes(biomes)); err != nil {
		return nil, err
	}

	// S6: object placement.
	var placed []object.Instance
	if len(conf.Placement.BiomeObjects) > 0 {
		start = time.Now()
		opts := conf.Classifier.WithDefaults()
		waterMask := field.WaterMask(height, opts.LakeHeightThreshold, conf.Threads)
		hd := height.Data()
		coastDist := field.DistanceBFS(conf.W, conf.H, func(i int) bool {
			return float64(hd[i]) < opts.OceanHeightThreshold
		})
		slope := field.Slope(height, opts.ExpectedMaxGradient, conf.Threads)
		placer := object.NewPlacer(conf.W, conf.H, conf.WorldSizeMeters, conf.Placement)
		placed = placer.Place(height, slope, waterMask, coastDist, biomes, conf.Threads)
		stageDone(conf, "objects", start, "placed", len(placed))
		conf.Metrics.Add("objects", float64(len(placed)))
		if err := emitImage(conf, "objects", render.Objects(conf.W, conf.H, placed)); err != nil {
			return nil, err
		}
		if conf.Sink != nil {
			if err := conf.Sink.WriteObjects(render.ObjectRows(placed)); err != nil {
				return nil, fmt.Errorf("write objects: %w", err)
			}
		}
	}

	res.Height = height
	res.Temperature = temp
	res.Moisture = moist
	res.FlowAccum = network.FlowAccum
	res.RiverMask = network.Mask
	res.Biomes = biomes
	res.Eroded = eroded
	res.Deposited = deposited
	res.Objects = placed
	res.ErosionStats = stats
	res.RiverCells = riverCells
	log.Info("Terrain run finished.", "run", res.RunID, "objects", len(placed), "river_cells", riverCells)
	return res, nil
}

// stageDone logs a stage completion line and records its duration.
func stageDone(conf Config, stage string, start time.Time, args ...any) {
	d := time.Since(start)
	conf.Metrics.ObserveStage(stage, d)
	conf.Log.Info("Stage finished.", append([]any{"stage", stage, "duration", d}, args...)...)
}

// emitImage hands one raster to the sink, if any.
func emitImage(conf Config, name string, rgb []byte) error {
	if conf.Sink == nil {
		return nil
	}
	if len(rgb) != conf.W*conf.H*3 {
		return fmt.Errorf("%w: raster %s has %d bytes for %dx%d", ErrDimensionMismatch, name, len(rgb), conf.W, conf.H)
	}
	if err := conf.Sink.WriteImage(name, conf.W, conf.H, rgb); err != nil {
		return fmt.Errorf("write image %s: %w", name, err)
	}
	return nil
}

// checkFinite verifies the height field contains no NaN or Inf after a
// mutating stage.
func checkFinite(height grid.Grid2D[float32], stage string) error {
	for i, v := range height.Data() {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: cell %d after %s", ErrNumericInvariant, i, stage)
		}
	}
	return nil
}
