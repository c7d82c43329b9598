// Package heightmap synthesises the base elevation field from a Voronoi
// plate partition blended with fractional Brownian motion.
package heightmap

import (
	"math"

	"github.com/dgravesa/go-parallel/parallel"

	"github.com/df-mc/terragen/terrain/grid"
	"github.com/df-mc/terragen/terrain/internal/mathx"
	"github.com/df-mc/terragen/terrain/noise"
)

// Config holds the tunable parameters for base heightmap synthesis. The zero
// value is usable; sensible defaults are applied by WithDefaults.
type Config struct {
	// Seed drives plate placement and the noise permutation table.
	Seed int64
	// NumPlates is the number of Voronoi sites partitioning the map.
	NumPlates int
	// RidgeStrength sharpens the exponential ridge along plate boundaries.
	RidgeStrength float64
	// FBMBlend in [0,1] mixes the gradient-noise term into the plate field.
	// Zero selects the default; a negative value disables the noise term
	// entirely, leaving a pure plate field.
	FBMBlend float64
	// FBMOctaves, FBMFrequency, FBMLacunarity and FBMGain parameterise the
	// fractional Brownian motion term.
	FBMOctaves    int
	FBMFrequency  float64
	FBMLacunarity float64
	FBMGain       float64
}

// WithDefaults fills unset fields with the standard values.
func (c Config) WithDefaults() Config {
	if c.NumPlates <= 0 {
		c.NumPlates = 36
	}
	if c.RidgeStrength == 0 {
		c.RidgeStrength = 1.0
	}
	if c.FBMBlend == 0 {
		c.FBMBlend = 0.42
	} else if c.FBMBlend < 0 {
		c.FBMBlend = 0
	}
	if c.FBMOctaves <= 0 {
		c.FBMOctaves = 5
	}
	if c.FBMFrequency == 0 {
		c.FBMFrequency = 0.0035
	}
	if c.FBMLacunarity == 0 {
		c.FBMLacunarity = 2.0
	}
	if c.FBMGain == 0 {
		c.FBMGain = 0.5
	}
	return c
}

// Plate is one Voronoi site. Base is the plate's characteristic elevation in
// [-0.6, 0.6]; Scale stretches the radial falloff.
type Plate struct {
	ID    int
	X, Y  float64
	Base  float64
	Scale float64
}

// Plates places cfg.NumPlates sites over a w×h domain. Each plate draws from
// its own generator seeded seed+index, so the set is independent of
// evaluation order.
func Plates(w, h int, cfg Config) []Plate {
	plates := make([]Plate, cfg.NumPlates)
	for i := range plates {
		rng := mathx.NewRand(cfg.Seed + int64(i))
		plates[i] = Plate{
			ID:    i,
			X:     rng.Float64() * float64(w),
			Y:     rng.Float64() * float64(h),
			Base:  (rng.Float64()*2 - 1) * 0.6,
			Scale: 0.5 + rng.Float64()*1.5,
		}
	}
	return plates
}

// Generate produces the normalised base elevation field in [0, 1].
func Generate(w, h int, cfg Config, threads int) grid.Grid2D[float32] {
	cfg = cfg.WithDefaults()
	plates := Plates(w, h, cfg)
	n := noise.New(cfg.Seed + 12345)
	out := grid.New[float32](w, h)

	diag := math.Sqrt(float64(w*w + h*h))
	ex := parallel.WithNumGoroutines(threads)
	ex.For(h, func(y, _ int) {
		for x := 0; x < w; x++ {
			vor := plateHeightAt(plates, x, y, diag, cfg)
			fbm := n.FBM(float64(x), float64(y), cfg.FBMFrequency, cfg.FBMOctaves, cfg.FBMLacunarity, cfg.FBMGain)
			v := (1-cfg.FBMBlend)*vor + cfg.FBMBlend*fbm
			v = math.Tanh(v * 1.2)
			out.Set(x, y, float32((v+1)*0.5))
		}
	})
	return out
}

// plateHeightAt evaluates the plate field at the centre of cell (x, y),
// returning a value in [-1, 1].
func plateHeightAt(plates []Plate, x, y int, diag float64, cfg Config) float64 {
	px := float64(x) + 0.5
	py := float64(y) + 0.5
	best, second := math.Inf(1), math.Inf(1)
	bestIdx := -1
	for i := range plates {
		dx := px - plates[i].X
		dy := py - plates[i].Y
		d := math.Sqrt(dx*dx + dy*dy)
		if d < best {
			second = best
			best = d
			bestIdx = i
		} else if d < second {
			second = d
		}
	}
	if bestIdx < 0 {
		return 0
	}
	p := plates[bestIdx]

	nd := best / math.Max(1, diag)
	gap := (second - best) / math.Max(1e-5, diag)
	ridge := math.Exp(-gap * cfg.RidgeStrength * 16)
	falloff := 1 - clamp(nd*p.Scale, 0, 1)
	h := p.Base*0.8 + falloff*0.2 + ridge*0.6*p.Base
	return clamp(h, -1, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
