package erosion

import (
	"math"

	"github.com/dgravesa/go-parallel/parallel"

	"github.com/df-mc/terragen/terrain/grid"
)

// ThermalParams configures talus-slope relaxation. Iterations of 0 disables
// the pass entirely.
type ThermalParams struct {
	// Iterations is the number of relaxation sweeps.
	Iterations int
	// Talus is the angle-of-repose threshold in height units per cell.
	Talus float64
	// Relaxation is the fraction of a cell's largest excess moved per sweep.
	Relaxation float64
	// UseDiagonalDistance divides diagonal height differences by √2 when
	// measuring slope.
	UseDiagonalDistance bool
}

// WithDefaults fills unset fields with the standard values. Iterations is
// left alone so a zero value keeps the pass disabled.
func (p ThermalParams) WithDefaults() ThermalParams {
	if p.Talus == 0 {
		p.Talus = 0.02
	}
	if p.Relaxation == 0 {
		p.Relaxation = 0.5
	}
	return p
}

var thermalDX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
var thermalDY = [8]int{0, 1, 1, 1, 0, -1, -1, -1}

// Thermal relaxes slopes steeper than the talus threshold by moving material
// to lower neighbours, in place. Per-sweep transfers accumulate into
// per-goroutine delta buffers reduced in fixed order, so the result is
// reproducible for a fixed goroutine count. Returns the total material moved.
func Thermal(height grid.Grid2D[float32], p ThermalParams, threads int) float64 {
	p = p.WithDefaults()
	if p.Iterations <= 0 {
		return 0
	}
	if threads < 1 {
		threads = 1
	}
	w, h := height.W(), height.H()
	nCells := w * h

	diagDist := 1.0
	if p.UseDiagonalDistance {
		diagDist = math.Sqrt2
	}

	buf := make([]float64, nCells)
	for i, v := range height.Data() {
		buf[i] = float64(v)
	}

	deltas := make([][]float64, threads)
	for t := range deltas {
		deltas[t] = make([]float64, nCells)
	}
	deltaGlobal := make([]float64, nCells)

	var totalMoved float64
	ex := parallel.WithNumGoroutines(threads)
	for iter := 0; iter < p.Iterations; iter++ {
		for t := range deltas {
			clearFloat64(deltas[t])
		}

		ex.For(h, func(y, grID int) {
			delta := deltas[grID]
			for x := 0; x < w; x++ {
				i := y*w + x
				hv := buf[i]

				var excesses [8]float64
				var sum, maxExcess float64
				for k := 0; k < 8; k++ {
					nx, ny := x+thermalDX[k], y+thermalDY[k]
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					dist := 1.0
					if k%2 == 1 {
						dist = diagDist
					}
					d := (hv - buf[ny*w+nx]) / dist
					if d > p.Talus {
						excesses[k] = d - p.Talus
						sum += excesses[k]
						maxExcess = math.Max(maxExcess, excesses[k])
					}
				}
				if sum <= 0 {
					continue
				}

				// The cell sheds a fraction of its steepest excess, shared
				// among the lower neighbours in proportion to their excess.
				outTotal := p.Relaxation * maxExcess
				delta[i] -= outTotal
				for k := 0; k < 8; k++ {
					if excesses[k] <= 0 {
						continue
					}
					nx, ny := x+thermalDX[k], y+thermalDY[k]
					delta[ny*w+nx] += excesses[k] / sum * outTotal
				}
			}
		})

		clearFloat64(deltaGlobal)
		for t := range deltas {
			d := deltas[t]
			for i := 0; i < nCells; i++ {
				deltaGlobal[i] += d[i]
			}
		}

		var moved float64
		for i := 0; i < nCells; i++ {
			if d := deltaGlobal[i]; d != 0 {
				buf[i] += d
				moved += math.Abs(d)
			}
		}
		totalMoved += moved
		if moved < 1e-9 {
			break
		}
	}

	data := height.Data()
	for i := 0; i < nCells; i++ {
		data[i] = float32(buf[i])
	}
	return totalMoved
}

func clearFloat64(s []float64) {
	for i := range s {
		s[i] = 0
	}
}
