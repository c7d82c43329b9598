package terrain

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/df-mc/terragen/terrain/biome"
	"github.com/df-mc/terragen/terrain/grid"
	"github.com/df-mc/terragen/terrain/object"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunRejectsInvalidDimensions(t *testing.T) {
	t.Parallel()
	_, err := Run(Config{Log: quiet(), W: 0, H: 64})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
	_, err = Run(Config{Log: quiet(), W: 64, H: -3})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestRunProducesConsistentGrids(t *testing.T) {
	t.Parallel()
	res, err := Run(Config{Log: quiet(), W: 48, H: 32, Seed: 7, Threads: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, dims := range []struct {
		name string
		w, h int
	}{
		{"height", res.Height.W(), res.Height.H()},
		{"temperature", res.Temperature.W(), res.Temperature.H()},
		{"moisture", res.Moisture.W(), res.Moisture.H()},
		{"flow", res.FlowAccum.W(), res.FlowAccum.H()},
		{"mask", res.RiverMask.W(), res.RiverMask.H()},
		{"biomes", res.Biomes.W(), res.Biomes.H()},
	} {
		if dims.w != 48 || dims.h != 32 {
			t.Errorf("%s grid is %dx%d, want 48x32", dims.name, dims.w, dims.h)
		}
	}
	for i, v := range res.Height.Data() {
		if v < 0 || v > 1 {
			t.Fatalf("height[%d] = %v outside [0,1]", i, v)
		}
	}
	for i, v := range res.FlowAccum.Data() {
		if v < 1 {
			t.Fatalf("flow[%d] = %v below 1", i, v)
		}
	}
	for i, v := range res.RiverMask.Data() {
		if v != 0 && v != 255 {
			t.Fatalf("mask[%d] = %d, want 0 or 255", i, v)
		}
	}
	for i, id := range res.Biomes.Data() {
		if id == biome.Unknown {
			t.Fatalf("biome[%d] is Unknown", i)
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	t.Parallel()
	conf := Config{Log: quiet(), W: 40, H: 40, Seed: 1234, Threads: 3}
	a, err := Run(conf)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := Run(conf)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	pairs := []struct {
		name string
		x, y uint64
	}{
		{"height", grid.DigestFloat32(a.Height), grid.DigestFloat32(b.Height)},
		{"temperature", grid.DigestFloat32(a.Temperature), grid.DigestFloat32(b.Temperature)},
		{"moisture", grid.DigestFloat32(a.Moisture), grid.DigestFloat32(b.Moisture)},
		{"flow", grid.DigestFloat32(a.FlowAccum), grid.DigestFloat32(b.FlowAccum)},
		{"mask", grid.DigestUint8(a.RiverMask), grid.DigestUint8(b.RiverMask)},
		{"biomes", grid.DigestUint16(a.Biomes), grid.DigestUint16(b.Biomes)},
	}
	for _, p := range pairs {
		if p.x != p.y {
			t.Errorf("%s digest differs between identical runs", p.name)
		}
	}
}

func TestRunSeedChangesOutput(t *testing.T) {
	t.Parallel()
	a, err := Run(Config{Log: quiet(), W: 32, H: 32, Seed: 1, Threads: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := Run(Config{Log: quiet(), W: 32, H: 32, Seed: 2, Threads: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if grid.DigestFloat32(a.Height) == grid.DigestFloat32(b.Height) {
		t.Fatal("different seeds produced identical height fields")
	}
}

func TestRunDegenerateCell(t *testing.T) {
	t.Parallel()
	res, err := Run(Config{Log: quiet(), W: 1, H: 1, Seed: 3, Threads: 1})
	if err != nil {
		t.Fatalf("Run on 1x1: %v", err)
	}
	if res.FlowAccum.At(0, 0) != 1 {
		t.Errorf("1x1 flow = %v, want 1", res.FlowAccum.At(0, 0))
	}
	if res.RiverMask.At(0, 0) != 0 {
		t.Errorf("1x1 river mask = %d, want 0", res.RiverMask.At(0, 0))
	}
	if res.Biomes.At(0, 0) == biome.Unknown {
		t.Error("1x1 biome is Unknown")
	}
}

func TestRunWithPlacement(t *testing.T) {
	t.Parallel()
	conf := Config{
		Log: quiet(), W: 48, H: 48, Seed: 9, Threads: 2,
		Placement: object.Config{
			Serial: true,
			BiomeObjects: map[string][]object.Def{
				"Grassland": {{
					Name:             "oak",
					DensityPer1000M2: 600,
					MinDistanceM:     1,
					ScaleMin:         1, ScaleMax: 1,
					YawVarianceDeg: 180,
					ElevationMax:   1, SlopeMax: 10,
				}},
				"Ocean": {{
					Name:             "kelp",
					DensityPer1000M2: 300,
					MinDistanceM:     1,
					ScaleMin:         1, ScaleMax: 1,
					YawVarianceDeg: 180,
					ElevationMax:   1, SlopeMax: 10,
					RequiresWater: true,
				}},
			},
		},
	}
	res, err := Run(conf)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Objects) == 0 {
		t.Fatal("placement produced no instances")
	}
	for i, inst := range res.Objects {
		if inst.PX < 0 || inst.PY < 0 || inst.PX >= 48 || inst.PY >= 48 {
			t.Fatalf("instance %d at cell (%d,%d) outside raster", i, inst.PX, inst.PY)
		}
		if inst.Biome == biome.Unknown {
			t.Fatalf("instance %d carries Unknown biome", i)
		}
	}
}

func TestRunRecordsMetrics(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	_, err := Run(Config{Log: quiet(), W: 24, H: 24, Seed: 5, Threads: 1, Metrics: m})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, stage := range []string{"heightmap", "climate", "erosion", "rivers", "biomes"} {
		if m.StageDuration(stage) <= 0 {
			t.Errorf("no duration recorded for stage %s", stage)
		}
	}
	if m.Counter("droplets") < 1000 {
		t.Errorf("droplet counter = %v, want at least the 1000 floor", m.Counter("droplets"))
	}
}

type recordingSink struct {
	images  map[string]int
	objects int
}

func (s *recordingSink) WriteImage(name string, w, h int, rgb []byte) error {
	if len(rgb) != w*h*3 {
		return errors.New("bad image size")
	}
	s.images[name]++
	return nil
}

func (s *recordingSink) WriteObjects(rows [][]string) error {
	s.objects = len(rows)
	return nil
}

func TestRunEmitsSnapshots(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{images: map[string]int{}}
	conf := Config{
		Log: quiet(), W: 32, H: 32, Seed: 2, Threads: 2, Sink: sink,
		Placement: object.Config{
			Serial: true,
			BiomeObjects: map[string][]object.Def{
				"Grassland": {{
					Name:             "birch",
					DensityPer1000M2: 400,
					MinDistanceM:     1,
					ScaleMin:         1, ScaleMax: 1,
					YawVarianceDeg: 180,
					ElevationMax:   1, SlopeMax: 10,
				}},
			},
		},
	}
	if _, err := Run(conf); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, name := range []string{
		"height_initial", "temperature", "moisture", "erosion_removed",
		"erosion_deposited", "height_eroded", "river_mask", "height_carved",
		"biomes", "objects",
	} {
		if sink.images[name] != 1 {
			t.Errorf("snapshot %s written %d times, want 1", name, sink.images[name])
		}
	}
	if sink.objects < 1 {
		t.Error("object rows never written")
	}
}

func TestRunThermalPass(t *testing.T) {
	t.Parallel()
	conf := Config{Log: quiet(), W: 32, H: 32, Seed: 8, Threads: 2}
	conf.Thermal.Iterations = 4
	res, err := Run(conf)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ThermalMoved < 0 {
		t.Fatalf("thermal moved %v, want >= 0", res.ThermalMoved)
	}
}
