// Package noise implements lattice-gradient value noise and fractional
// Brownian motion over it. A Table carries a 256-entry permutation shuffled
// from a seed and duplicated to 512 entries for cheap wraparound.
package noise

import (
	"math"

	"github.com/df-mc/terragen/terrain/internal/mathx"
)

const permSize = 256

// Table is a seeded gradient-noise sampler. Safe for concurrent reads after
// construction.
type Table struct {
	p [permSize * 2]int
}

// New builds a permutation table from the seed.
func New(seed int64) *Table {
	t := &Table{}
	rng := mathx.NewRand(seed)
	for i := 0; i < permSize; i++ {
		t.p[i] = i
	}
	for i := permSize - 1; i > 0; i-- {
		j := int(uint32(rng.Next()) % uint32(i+1))
		t.p[i], t.p[j] = t.p[j], t.p[i]
	}
	for i := 0; i < permSize; i++ {
		t.p[i+permSize] = t.p[i]
	}
	return t
}

// At samples the noise at (x, y) scaled by frequency. The result is clamped
// to [-1, 1].
func (t *Table) At(x, y, frequency float64) float64 {
	x *= frequency
	y *= frequency
	fx, fy := math.Floor(x), math.Floor(y)
	xi := int(fx) & 255
	yi := int(fy) & 255
	xf := x - fx
	yf := y - fy
	u := fade(xf)
	v := fade(yf)
	aa := t.p[t.p[xi]+yi]
	ab := t.p[t.p[xi]+yi+1]
	ba := t.p[t.p[xi+1]+yi]
	bb := t.p[t.p[xi+1]+yi+1]
	x1 := lerp(grad(aa, xf, yf), grad(ba, xf-1, yf), u)
	x2 := lerp(grad(ab, xf, yf-1), grad(bb, xf-1, yf-1), u)
	return clamp(lerp(x1, x2, v), -1, 1)
}

// FBM sums octaves of At with geometrically scaled frequency and amplitude,
// normalised by the total amplitude and clamped to [-1, 1].
func (t *Table) FBM(x, y, baseFreq float64, octaves int, lacunarity, gain float64) float64 {
	amp, freq := 1.0, 1.0
	var sum, maxAmp float64
	for i := 0; i < octaves; i++ {
		sum += t.At(x, y, baseFreq*freq) * amp
		maxAmp += amp
		amp *= gain
		freq *= lacunarity
	}
	if maxAmp > 0 {
		sum /= maxAmp
	}
	return clamp(sum, -1, 1)
}

func fade(t float64) float64 { return t * t * t * (t*(t*6-15) + 10) }

func lerp(a, b, t float64) float64 { return a + t*(b-a) }

// grad selects one of 8 gradient directions from the low hash bits.
func grad(hash int, x, y float64) float64 {
	h := hash & 7
	u, v := x, y
	if h >= 4 {
		u, v = y, x
	}
	if h&1 != 0 {
		u = -u
	}
	w := 2 * v
	if h&2 != 0 {
		w = -w
	}
	return u + w*0.5
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
