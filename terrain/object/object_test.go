package object

import (
	"math"
	"testing"

	"github.com/df-mc/terragen/terrain/biome"
	"github.com/df-mc/terragen/terrain/grid"
)

func flatInputs(w, h int, elev float32, b biome.ID) (grid.Grid2D[float32], grid.Grid2D[float32], grid.Grid2D[biome.ID]) {
	height := grid.New[float32](w, h)
	height.Fill(elev)
	slope := grid.New[float32](w, h)
	biomes := grid.New[biome.ID](w, h)
	biomes.Fill(b)
	return height, slope, biomes
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig([]byte(`{"biome_objects": {"Grassland": [{"name": "oak", "density_per_1000m2": 5}]}}`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Seed != 424242 {
		t.Errorf("seed = %d, want 424242", cfg.Seed)
	}
	if cfg.GlobalMaxInstances != 500000 {
		t.Errorf("global max = %d, want 500000", cfg.GlobalMaxInstances)
	}
	if cfg.DefaultMinDistanceM != 2.0 {
		t.Errorf("default min distance = %v, want 2.0", cfg.DefaultMinDistanceM)
	}
	d := cfg.BiomeObjects["Grassland"][0]
	if d.MinDistanceM != 1.0 || d.ScaleMin != 1.0 || d.ScaleMax != 1.0 {
		t.Errorf("def defaults not applied: %+v", d)
	}
	if d.YawVarianceDeg != 180.0 || d.ElevationMax != 1.0 || d.SlopeMax != 10.0 {
		t.Errorf("def range defaults not applied: %+v", d)
	}
}

func TestLoadConfigClusterDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig([]byte(`{"biome_objects": {"Swamp": [{"name": "reed", "density_per_1000m2": 2, "cluster": {}}]}}`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	c := cfg.BiomeObjects["Swamp"][0].Cluster
	if c == nil {
		t.Fatal("cluster not parsed")
	}
	if c.Count != 3 || c.Radius != 2.0 {
		t.Errorf("cluster defaults = %d/%v, want 3/2.0", c.Count, c.Radius)
	}
}

func TestPlaceRespectsMinDistance(t *testing.T) {
	t.Parallel()
	cfg := Config{
		Seed:   7,
		Serial: true,
		BiomeObjects: map[string][]Def{
			"Grassland": {{
				Name:             "oak",
				DensityPer1000M2: 900,
				MinDistanceM:     3.0,
				ScaleMin:         1, ScaleMax: 1,
				YawVarianceDeg: 180,
				ElevationMax:   1, SlopeMax: 10,
			}},
		},
	}
	height, slope, biomes := flatInputs(32, 32, 0.5, biome.Grassland)
	placer := NewPlacer(32, 32, 32, cfg)
	placed := placer.Place(height, slope, grid.Grid2D[uint8]{}, nil, biomes, 1)
	if len(placed) == 0 {
		t.Fatal("dense definition placed nothing")
	}
	for a := range placed {
		for b := a + 1; b < len(placed); b++ {
			dx := placed[a].Pos[0] - placed[b].Pos[0]
			dy := placed[a].Pos[1] - placed[b].Pos[1]
			if d := math.Hypot(dx, dy); d < 3.0 {
				t.Fatalf("instances %d and %d only %v m apart", a, b, d)
			}
		}
	}
}

func TestPlaceHonoursGlobalCap(t *testing.T) {
	t.Parallel()
	cfg := Config{
		Seed:               11,
		GlobalMaxInstances: 5,
		Serial:             true,
		BiomeObjects: map[string][]Def{
			"Grassland": {{
				Name:             "grass",
				DensityPer1000M2: 900,
				MinDistanceM:     0.5,
				ScaleMin:         1, ScaleMax: 1,
				YawVarianceDeg: 180,
				ElevationMax:   1, SlopeMax: 10,
			}},
		},
	}
	height, slope, biomes := flatInputs(64, 64, 0.5, biome.Grassland)
	placer := NewPlacer(64, 64, 64, cfg)
	placed := placer.Place(height, slope, grid.Grid2D[uint8]{}, nil, biomes, 1)
	if len(placed) != 5 {
		t.Fatalf("placed %d instances, want the cap of 5", len(placed))
	}
}

func TestPlaceFiltersHabitat(t *testing.T) {
	t.Parallel()
	cfg := Config{
		Seed:   3,
		Serial: true,
		BiomeObjects: map[string][]Def{
			"Grassland": {{
				Name:             "alpine",
				DensityPer1000M2: 900,
				MinDistanceM:     0.5,
				ScaleMin:         1, ScaleMax: 1,
				YawVarianceDeg: 180,
				ElevationMin:   0.8, ElevationMax: 1, SlopeMax: 10,
			}},
		},
	}
	height, slope, biomes := flatInputs(16, 16, 0.5, biome.Grassland)
	placer := NewPlacer(16, 16, 16, cfg)
	if placed := placer.Place(height, slope, grid.Grid2D[uint8]{}, nil, biomes, 1); len(placed) != 0 {
		t.Fatalf("placed %d instances below the elevation floor", len(placed))
	}
}

func TestPlaceRequiresWaterGate(t *testing.T) {
	t.Parallel()
	cfg := Config{
		Seed:   5,
		Serial: true,
		BiomeObjects: map[string][]Def{
			"Lake": {{
				Name:             "lily",
				DensityPer1000M2: 900,
				MinDistanceM:     0.5,
				ScaleMin:         1, ScaleMax: 1,
				YawVarianceDeg: 180,
				ElevationMax:   1, SlopeMax: 10,
				RequiresWater: true,
			}},
		},
	}
	height, slope, biomes := flatInputs(16, 16, 0.4, biome.Lake)
	placer := NewPlacer(16, 16, 16, cfg)
	if placed := placer.Place(height, slope, grid.Grid2D[uint8]{}, nil, biomes, 1); len(placed) != 0 {
		t.Fatalf("placed %d water objects with no water mask", len(placed))
	}
	mask := grid.New[uint8](16, 16)
	mask.Fill(1)
	if placed := placer.Place(height, slope, mask, nil, biomes, 1); len(placed) == 0 {
		t.Fatal("placed nothing on open water")
	}
}

func TestPlaceSerialDeterministic(t *testing.T) {
	t.Parallel()
	cfg := Config{
		Seed:   99,
		Serial: true,
		BiomeObjects: map[string][]Def{
			"Savanna": {{
				Name:             "acacia",
				DensityPer1000M2: 200,
				MinDistanceM:     2.0,
				ScaleMin:         0.8, ScaleMax: 1.4,
				YawVarianceDeg: 360,
				ElevationMax:   1, SlopeMax: 10,
				Cluster: &Cluster{Count: 2, Radius: 3},
			}},
		},
	}
	height, slope, biomes := flatInputs(48, 48, 0.55, biome.Savanna)
	a := NewPlacer(48, 48, 48, cfg).Place(height, slope, grid.Grid2D[uint8]{}, nil, biomes, 1)
	b := NewPlacer(48, 48, 48, cfg).Place(height, slope, grid.Grid2D[uint8]{}, nil, biomes, 1)
	if len(a) != len(b) {
		t.Fatalf("runs placed %d and %d instances", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("instance %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestCoastBoostIncreasesProbability(t *testing.T) {
	t.Parallel()
	d := Def{
		Name:             "palm",
		DensityPer1000M2: 50,
		MinDistanceM:     1,
		ElevationMax:     1, SlopeMax: 10,
		PrefersCoast: true,
	}
	p := NewPlacer(16, 16, 16, Config{Seed: 1}.WithDefaults())
	near := p.probability(&d, 0.4, 0.05, false, 0)
	far := p.probability(&d, 0.4, 0.05, false, 9)
	if near <= far {
		t.Fatalf("coast probability: near %v <= far %v", near, far)
	}
}

func TestSlopePenaltyReducesProbability(t *testing.T) {
	t.Parallel()
	d := Def{
		Name:             "pine",
		DensityPer1000M2: 50,
		MinDistanceM:     1,
		ElevationMax:     1, SlopeMax: 10,
	}
	p := NewPlacer(16, 16, 16, Config{Seed: 1}.WithDefaults())
	flat := p.probability(&d, 0.5, 0.1, false, -1)
	mid := p.probability(&d, 0.5, 0.45, false, -1)
	steep := p.probability(&d, 0.5, 0.7, false, -1)
	if !(steep < mid && mid < flat) {
		t.Fatalf("slope penalty not monotone: %v, %v, %v", flat, mid, steep)
	}
}

func TestModelRefPlaceholder(t *testing.T) {
	t.Parallel()
	inst := Instance{Name: "rock"}
	if got := inst.ModelRef(); got != "PLACEHOLDER:rock" {
		t.Errorf("placeholder ref = %q", got)
	}
	inst.Model = "models/rock.glb"
	if got := inst.ModelRef(); got != "models/rock.glb" {
		t.Errorf("model ref = %q", got)
	}
}
