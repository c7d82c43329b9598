package terrain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml"
)

func TestDefaultConfigRoundTrip(t *testing.T) {
	t.Parallel()
	c := DefaultConfig()
	encoded, err := toml.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded UserConfig
	if err := toml.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != c {
		t.Fatalf("round trip changed config:\n%+v\n%+v", c, decoded)
	}
}

func TestUserConfigMapsToConfig(t *testing.T) {
	t.Parallel()
	uc := DefaultConfig()
	uc.World.Width, uc.World.Height = 128, 96
	uc.World.Seed = 42
	uc.World.Threads = 4
	uc.Heightmap.Plates = 12
	uc.Erosion.Droplets = 5000
	uc.Erosion.ThermalIterations = 3
	uc.Rivers.FlowThreshold = 150
	uc.Biomes.SmoothingIterations = -1

	conf, err := uc.Config(quiet())
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if conf.W != 128 || conf.H != 96 || conf.Seed != 42 || conf.Threads != 4 {
		t.Errorf("world settings not mapped: %+v", conf)
	}
	if conf.Heightmap.NumPlates != 12 {
		t.Errorf("plates = %d, want 12", conf.Heightmap.NumPlates)
	}
	if conf.Erosion.NumDroplets != 5000 {
		t.Errorf("droplets = %d, want 5000", conf.Erosion.NumDroplets)
	}
	if conf.Thermal.Iterations != 3 {
		t.Errorf("thermal iterations = %d, want 3", conf.Thermal.Iterations)
	}
	if conf.River.FlowAccumThreshold != 150 {
		t.Errorf("flow threshold = %v, want 150", conf.River.FlowAccumThreshold)
	}
	if conf.Classifier.SmoothingIterations != -1 {
		t.Errorf("smoothing = %d, want -1", conf.Classifier.SmoothingIterations)
	}
}

func TestUserConfigLoadsExternalFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	biomePath := filepath.Join(dir, "biomes.json")
	placePath := filepath.Join(dir, "objects.json")
	if err := os.WriteFile(biomePath, []byte(`[{"id": "Desert", "prefMinMoisture": 0.02}]`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(placePath, []byte(`{"seed": 77, "biome_objects": {"Desert": [{"name": "cactus", "density_per_1000m2": 4}]}}`), 0644); err != nil {
		t.Fatal(err)
	}

	uc := DefaultConfig()
	uc.Biomes.DefinitionFile = biomePath
	uc.Objects.PlacementFile = placePath
	uc.Objects.Serial = true

	conf, err := uc.Config(quiet())
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if len(conf.BiomeDefs) != 1 || conf.BiomeDefs[0].PrefMinMoisture != 0.02 {
		t.Errorf("biome defs not loaded: %+v", conf.BiomeDefs)
	}
	if conf.Placement.Seed != 77 || !conf.Placement.Serial {
		t.Errorf("placement config not loaded: %+v", conf.Placement)
	}
	if len(conf.Placement.BiomeObjects["Desert"]) != 1 {
		t.Errorf("placement defs not loaded: %+v", conf.Placement.BiomeObjects)
	}

	uc.Biomes.DefinitionFile = filepath.Join(dir, "missing.json")
	if _, err := uc.Config(quiet()); err == nil {
		t.Fatal("missing biome file accepted")
	}
}
