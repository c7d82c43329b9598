// Package climate derives the temperature and moisture fields from noise,
// latitude and the base elevation.
package climate

import (
	"github.com/dgravesa/go-parallel/parallel"

	"github.com/df-mc/terragen/terrain/grid"
	"github.com/df-mc/terragen/terrain/noise"
)

// Config holds the climate synthesis parameters.
type Config struct {
	// Seed derives the two independent noise tables.
	Seed int64
	// BaseFrequency is the shared noise base frequency.
	BaseFrequency float64
}

// WithDefaults fills unset fields with the standard values.
func (c Config) WithDefaults() Config {
	if c.BaseFrequency == 0 {
		c.BaseFrequency = 0.0025
	}
	return c
}

// Generate computes temperature and moisture in [0, 1] for every cell.
// Temperature blends low-frequency noise with a latitudinal factor peaking at
// the map's equator; moisture is noise damped by elevation.
func Generate(height grid.Grid2D[float32], cfg Config, threads int) (temp, moist grid.Grid2D[float32]) {
	cfg = cfg.WithDefaults()
	w, h := height.W(), height.H()
	temp = grid.New[float32](w, h)
	moist = grid.New[float32](w, h)

	tn := noise.New(cfg.Seed ^ 0xA5A5A5)
	mn := noise.New(cfg.Seed ^ 0x5A5A5A)

	ex := parallel.WithNumGoroutines(threads)
	ex.For(h, func(y, _ int) {
		lat := 2*float64(y)/float64(h) - 1
		if lat < 0 {
			lat = -lat
		}
		latFactor := 1 - lat
		for x := 0; x < w; x++ {
			tNoise := tn.FBM(float64(x)+100, float64(y)+100, 1.2*cfg.BaseFrequency, 4, 2.0, 0.6)
			tNoise = (tNoise + 1) * 0.5
			t := clamp(0.6*tNoise+0.4*latFactor, 0, 1)
			temp.Set(x, y, float32(t))

			mNoise := mn.FBM(float64(x)-100, float64(y)-100, 1.5*cfg.BaseFrequency, 4, 2.0, 0.6)
			mNoise = (mNoise + 1) * 0.5
			m := clamp(mNoise*(0.6+0.4*(1-float64(height.At(x, y)))), 0, 1)
			moist.Set(x, y, float32(m))
		}
	})
	return temp, moist
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
