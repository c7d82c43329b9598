package biome

import (
	"math"

	"github.com/dgravesa/go-parallel/parallel"

	"github.com/df-mc/terragen/terrain/field"
	"github.com/df-mc/terragen/terrain/grid"
)

// Options tunes the classifier. The zero value is usable; sensible defaults
// are applied by WithDefaults.
type Options struct {
	// CoastDistanceTiles and RiverDistanceTiles threshold the BFS distances
	// behind the nearCoast and nearRiver indicators.
	CoastDistanceTiles int
	RiverDistanceTiles int
	// OceanHeightThreshold and LakeHeightThreshold split open water from
	// land.
	OceanHeightThreshold float64
	LakeHeightThreshold  float64
	// ExpectedMaxGradient normalises the slope map.
	ExpectedMaxGradient float64
	// SmoothingIterations is the majority filter pass count. Zero selects
	// the default of 1; a negative value disables smoothing.
	SmoothingIterations int
	// NoWaterGate disables the hard requiresWater gate.
	NoWaterGate bool
}

// WithDefaults fills unset fields with the standard values.
func (o Options) WithDefaults() Options {
	if o.CoastDistanceTiles == 0 {
		o.CoastDistanceTiles = 3
	}
	if o.RiverDistanceTiles == 0 {
		o.RiverDistanceTiles = 2
	}
	if o.OceanHeightThreshold == 0 {
		o.OceanHeightThreshold = 0.35
	}
	if o.LakeHeightThreshold == 0 {
		o.LakeHeightThreshold = 0.45
	}
	if o.ExpectedMaxGradient == 0 {
		o.ExpectedMaxGradient = 0.18
	}
	if o.SmoothingIterations == 0 {
		o.SmoothingIterations = 1
	} else if o.SmoothingIterations < 0 {
		o.SmoothingIterations = 0
	}
	return o
}

// Score rates how well one definition fits a cell. Hard gates return zero;
// otherwise per-feature scores in [0,1] are averaged by the definition's
// weights and multiplied by the coast and river boosts.
func Score(b *Def, elevation, temperature, moisture, slope float64, nearCoast, nearRiver bool, opts Options) float64 {
	adjTemp := clamp01(temperature * b.TemperatureModifier)
	adjMoist := clamp01(moisture * b.MoistureModifier)

	if b.RequiresWater && !opts.NoWaterGate {
		nearWater := elevation <= opts.LakeHeightThreshold || nearCoast || nearRiver
		if !nearWater {
			return 0
		}
	}
	if b.RequiresHighElevation && elevation < b.PrefMinElevation {
		return 0
	}

	elevScore := bandScore(elevation, b.PrefMinElevation, b.PrefMaxElevation)
	mScore := bandScore(adjMoist, b.PrefMinMoisture, b.PrefMaxMoisture)
	tScore := bandScore(adjTemp, b.PrefMinTemperature, b.PrefMaxTemperature)

	ds := math.Abs(slope-b.PrefSlope) / math.Max(1e-6, b.SlopeTolerance)
	slopeScore := math.Exp(-ds * 4)

	coastBoost := 1.0
	if b.PrefersCoast {
		if nearCoast {
			coastBoost = 1.5
		} else {
			coastBoost = 0.85
		}
	}
	riverBoost := 1.0
	if b.PrefersRiver && nearRiver {
		riverBoost = 1.35
	}

	coastInd, riverInd := 0.0, 0.0
	if nearCoast {
		coastInd = 1
	}
	if nearRiver {
		riverInd = 1
	}
	weightSum := b.WeightElevation + b.WeightMoisture + b.WeightTemperature + b.WeightSlope + b.WeightCoastal + b.WeightRiver
	weighted := (b.WeightElevation*elevScore + b.WeightMoisture*mScore + b.WeightTemperature*tScore +
		b.WeightSlope*slopeScore + b.WeightCoastal*coastInd + b.WeightRiver*riverInd) / math.Max(1e-6, weightSum)

	score := weighted * coastBoost * riverBoost
	if b.PrefMinMoisture > 0.7 && adjMoist < 0.15 {
		score *= 0.07
	}
	return score
}

// bandScore is 1 inside [lo, hi] and decays exponentially with the distance
// to the nearest bound outside it.
func bandScore(v, lo, hi float64) float64 {
	if v >= lo && v <= hi {
		return 1
	}
	d := math.Min(math.Abs(v-lo), math.Abs(v-hi))
	return math.Exp(-d * 8)
}

// ChooseBest returns the highest-scoring definition's ID, ties broken by
// definition order. Scores at or below 1e-5 fall back to Grassland when it is
// present in the set.
func ChooseBest(defs []Def, elevation, temperature, moisture, slope float64, nearCoast, nearRiver bool, opts Options) ID {
	bestScore := -1.0
	best := Unknown
	for i := range defs {
		if s := Score(&defs[i], elevation, temperature, moisture, slope, nearCoast, nearRiver, opts); s > bestScore {
			bestScore = s
			best = defs[i].ID
		}
	}
	if bestScore <= 1e-5 {
		for i := range defs {
			if defs[i].ID == Grassland {
				return Grassland
			}
		}
	}
	return best
}

// Classify produces the biome map for the given rasters. The river mask may
// be the zero grid to classify without river influence. Cells below the ocean
// height threshold are Ocean when the definition set contains Ocean; every
// other cell takes the best-scoring definition.
func Classify(height, temp, moist grid.Grid2D[float32], riverMask grid.Grid2D[uint8], defs []Def, opts Options, threads int) grid.Grid2D[ID] {
	opts = opts.WithDefaults()
	w, h := height.W(), height.H()

	hd := height.Data()
	oceanDist := field.DistanceBFS(w, h, func(i int) bool {
		return float64(hd[i]) < opts.OceanHeightThreshold
	})
	var riverData []uint8
	if riverMask.Len() == w*h {
		riverData = riverMask.Data()
	}
	riverDist := field.DistanceBFS(w, h, func(i int) bool {
		return riverData != nil && riverData[i] != 0
	})
	slope := field.Slope(height, opts.ExpectedMaxGradient, threads)
	hasOcean := false
	for i := range defs {
		if defs[i].ID == Ocean {
			hasOcean = true
		}
	}

	out := grid.New[ID](w, h)
	od := out.Data()
	ex := parallel.WithNumGoroutines(threads)
	ex.For(h, func(y, _ int) {
		for x := 0; x < w; x++ {
			i := y*w + x
			if hasOcean && float64(hd[i]) < opts.OceanHeightThreshold {
				od[i] = Ocean
				continue
			}
			nearCoast := oceanDist[i] <= opts.CoastDistanceTiles
			nearRiver := riverDist[i] <= opts.RiverDistanceTiles || (riverData != nil && riverData[i] != 0)
			od[i] = ChooseBest(defs,
				float64(hd[i]), float64(temp.Data()[i]), float64(moist.Data()[i]), float64(slope.Data()[i]),
				nearCoast, nearRiver, opts)
		}
	})

	if opts.SmoothingIterations > 0 {
		MajorityFilter(out, opts.SmoothingIterations, threads)
	}
	return out
}

// MajorityFilter replaces each cell with the most frequent value of its 3×3
// neighbourhood, keeping the centre on ties. Iterations run sequentially
// over a double buffer; cells within an iteration are independent.
func MajorityFilter(m grid.Grid2D[ID], iterations, threads int) {
	if iterations <= 0 {
		return
	}
	w, h := m.W(), m.H()
	cur := m.Data()
	tmp := make([]ID, len(cur))
	ex := parallel.WithNumGoroutines(threads)
	for it := 0; it < iterations; it++ {
		ex.For(h, func(y, _ int) {
			var counts [int(Unknown) + 1]int
			for x := 0; x < w; x++ {
				for k := range counts {
					counts[k] = 0
				}
				for oy := -1; oy <= 1; oy++ {
					for ox := -1; ox <= 1; ox++ {
						nx, ny := x+ox, y+oy
						if nx < 0 || ny < 0 || nx >= w || ny >= h {
							continue
						}
						counts[cur[ny*w+nx]]++
					}
				}
				centre := cur[y*w+x]
				bestVal, bestCount := centre, counts[centre]
				for v, c := range counts {
					if c > bestCount {
						bestVal, bestCount = ID(v), c
					}
				}
				tmp[y*w+x] = bestVal
			}
		})
		copy(cur, tmp)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
