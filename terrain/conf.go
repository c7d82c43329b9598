package terrain

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/df-mc/terragen/terrain/biome"
	"github.com/df-mc/terragen/terrain/erosion"
	"github.com/df-mc/terragen/terrain/heightmap"
	"github.com/df-mc/terragen/terrain/object"
	"github.com/df-mc/terragen/terrain/river"
)

// UserConfig is the user configuration for a terrain run. It holds the
// settings that are reasonable to expose in a flat TOML file. UserConfig may
// be serialised and can be converted to a Config by calling
// UserConfig.Config().
type UserConfig struct {
	World struct {
		// Width and Height are the raster dimensions in cells.
		Width, Height int
		// Seed drives every stage of the run.
		Seed int64
		// Threads sizes the worker pools. Set to 0 to use the host's CPU
		// count.
		Threads int
		// SizeMeters is the world edge length in metres. Set to 0 to map
		// one cell to one metre.
		SizeMeters float64
	}
	Heightmap struct {
		// Plates is the number of Voronoi sites partitioning the map.
		Plates int
		// RidgeStrength sharpens mountain ridges along plate boundaries.
		RidgeStrength float64
		// NoiseBlend in [0,1] mixes detail noise into the plate field. Set
		// to a negative value to disable the noise term.
		NoiseBlend float64
		// NoiseOctaves, NoiseFrequency, NoiseLacunarity and NoiseGain tune
		// the detail noise.
		NoiseOctaves    int
		NoiseFrequency  float64
		NoiseLacunarity float64
		NoiseGain       float64
	}
	Erosion struct {
		// Droplets fixes the droplet count. Set to 0 to derive it from
		// DropletFraction.
		Droplets int
		// DropletFraction scales the droplet count with the cell count.
		DropletFraction float64
		// ThermalIterations enables talus relaxation sweeps after the
		// hydraulic pass when above zero.
		ThermalIterations int
		// Talus and Relaxation tune the thermal pass.
		Talus      float64
		Relaxation float64
	}
	Rivers struct {
		// FlowThreshold marks cells as river when their accumulated flow
		// meets it. Set to 0 to pick a map-size dependent default.
		FlowThreshold float64
		// MinDepth, MaxDepth and WidthMultiplier tune channel carving.
		MinDepth        float64
		MaxDepth        float64
		WidthMultiplier float64
	}
	Biomes struct {
		// DefinitionFile is a JSON biome definition file overriding the
		// built-in library. Leave empty to use the built-ins.
		DefinitionFile string
		// SmoothingIterations is the majority filter pass count. Set to -1
		// to disable smoothing.
		SmoothingIterations int
	}
	Objects struct {
		// PlacementFile is the JSON object placement file. Leave empty to
		// skip object placement.
		PlacementFile string
		// Serial forces single-goroutine placement for bit-exact output.
		Serial bool
	}
	Output struct {
		// Folder is the directory run outputs are written to.
		Folder string
	}
}

// Config converts a UserConfig to a Config. An error is returned if loading
// the referenced biome or placement files failed.
func (uc UserConfig) Config(log *slog.Logger) (Config, error) {
	conf := Config{
		Log:             log,
		W:               uc.World.Width,
		H:               uc.World.Height,
		Seed:            uc.World.Seed,
		Threads:         uc.World.Threads,
		WorldSizeMeters: uc.World.SizeMeters,
		DropletFraction: uc.Erosion.DropletFraction,
		Heightmap: heightmap.Config{
			NumPlates:     uc.Heightmap.Plates,
			RidgeStrength: uc.Heightmap.RidgeStrength,
			FBMBlend:      uc.Heightmap.NoiseBlend,
			FBMOctaves:    uc.Heightmap.NoiseOctaves,
			FBMFrequency:  uc.Heightmap.NoiseFrequency,
			FBMLacunarity: uc.Heightmap.NoiseLacunarity,
			FBMGain:       uc.Heightmap.NoiseGain,
		},
		Erosion: erosion.Params{NumDroplets: uc.Erosion.Droplets},
		Thermal: erosion.ThermalParams{
			Iterations: uc.Erosion.ThermalIterations,
			Talus:      uc.Erosion.Talus,
			Relaxation: uc.Erosion.Relaxation,
		},
		River: river.Params{
			FlowAccumThreshold: uc.Rivers.FlowThreshold,
			MinChannelDepth:    uc.Rivers.MinDepth,
			MaxChannelDepth:    uc.Rivers.MaxDepth,
			WidthMultiplier:    uc.Rivers.WidthMultiplier,
		},
		Classifier: biome.Options{SmoothingIterations: uc.Biomes.SmoothingIterations},
	}
	if path := strings.TrimSpace(uc.Biomes.DefinitionFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return conf, fmt.Errorf("read biome definitions: %w", err)
		}
		defs, err := biome.LoadDefs(data)
		if err != nil {
			return conf, fmt.Errorf("load biome definitions: %w", err)
		}
		conf.BiomeDefs = defs
	}
	if path := strings.TrimSpace(uc.Objects.PlacementFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return conf, fmt.Errorf("read placement config: %w", err)
		}
		placement, err := object.LoadConfig(data)
		if err != nil {
			return conf, fmt.Errorf("load placement config: %w", err)
		}
		placement.Serial = uc.Objects.Serial
		conf.Placement = placement
	}
	return conf, nil
}

// DefaultConfig returns a configuration with the default values filled out.
func DefaultConfig() UserConfig {
	c := UserConfig{}
	c.World.Width = 512
	c.World.Height = 512
	c.World.Seed = 0
	c.World.Threads = 0
	c.Erosion.DropletFraction = 0.4
	c.Biomes.SmoothingIterations = 1
	c.Output.Folder = "out"
	return c
}
