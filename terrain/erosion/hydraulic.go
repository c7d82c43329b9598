// Package erosion simulates hydraulic droplet erosion and thermal slope
// relaxation over the elevation field.
package erosion

import (
	"math"

	"github.com/dgravesa/go-parallel/parallel"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df-mc/terragen/terrain/grid"
	"github.com/df-mc/terragen/terrain/internal/mathx"
)

// Params holds the droplet simulation parameters. The zero value is usable;
// sensible defaults are applied by WithDefaults.
type Params struct {
	// WorldSeed derives every droplet's private generator.
	WorldSeed int64
	// NumDroplets is the number of simulated droplets.
	NumDroplets int
	// MaxSteps bounds a droplet's lifetime in steps.
	MaxSteps int
	// StepSize is the distance moved per step in cell units.
	StepSize float64
	// InitSpeed and InitWater are the droplet starting conditions.
	InitSpeed float64
	InitWater float64
	// Inertia in [0,1] blends the previous direction into the new one.
	Inertia float64
	// Gravity converts descended height into speed.
	Gravity float64
	// EvaporateRate shrinks the water volume each step.
	EvaporateRate float64
	// MinWater and MinSpeed terminate a droplet when undershot.
	MinWater float64
	MinSpeed float64
	// CapacityFactor scales the sediment a droplet can carry.
	CapacityFactor float64
	// ErodeRate and DepositRate govern the exchange with the ground.
	ErodeRate   float64
	DepositRate float64
	// MaxErodePerStep caps single-step ground removal.
	MaxErodePerStep float64
}

// WithDefaults fills unset fields with the standard values.
func (p Params) WithDefaults() Params {
	if p.MaxSteps <= 0 {
		p.MaxSteps = 45
	}
	if p.StepSize == 0 {
		p.StepSize = 1.0
	}
	if p.InitSpeed == 0 {
		p.InitSpeed = 1.0
	}
	if p.InitWater == 0 {
		p.InitWater = 1.0
	}
	if p.Inertia == 0 {
		p.Inertia = 0.3
	}
	if p.Gravity == 0 {
		p.Gravity = 9.81
	}
	if p.EvaporateRate == 0 {
		p.EvaporateRate = 0.015
	}
	if p.MinWater == 0 {
		p.MinWater = 0.01
	}
	if p.MinSpeed == 0 {
		p.MinSpeed = 0.01
	}
	if p.CapacityFactor == 0 {
		p.CapacityFactor = 8.0
	}
	if p.ErodeRate == 0 {
		p.ErodeRate = 0.5
	}
	if p.DepositRate == 0 {
		p.DepositRate = 0.3
	}
	if p.MaxErodePerStep == 0 {
		p.MaxErodePerStep = 0.1
	}
	return p
}

// Stats summarises one hydraulic erosion run.
type Stats struct {
	TotalEroded     float64
	TotalDeposited  float64
	AppliedDroplets int
}

// Hydraulic runs the droplet simulation, mutating height in place and
// returning per-cell erode and deposit totals.
//
// Droplets never write to the height grid while simulating. Every goroutine
// owns a pair of double-precision accumulator rasters; once all droplets
// terminate, the buffers are reduced in goroutine-index order and the summed
// delta is applied to the grid, clamped at zero. With a fixed goroutine count
// the result is bit-reproducible.
func Hydraulic(height grid.Grid2D[float32], p Params, threads int) (Stats, grid.Grid2D[float64], grid.Grid2D[float64]) {
	p = p.WithDefaults()
	if threads < 1 {
		threads = 1
	}
	w, h := height.W(), height.H()
	nCells := w * h

	erodeBufs := make([][]float64, threads)
	depositBufs := make([][]float64, threads)
	for t := 0; t < threads; t++ {
		erodeBufs[t] = make([]float64, nCells)
		depositBufs[t] = make([]float64, nCells)
	}

	ex := parallel.WithNumGoroutines(threads)
	ex.For(p.NumDroplets, func(di, grID int) {
		simulateDroplet(height, p, di, erodeBufs[grID], depositBufs[grID])
	})

	finalErode := make([]float64, nCells)
	finalDeposit := make([]float64, nCells)
	for t := 0; t < threads; t++ {
		eb, db := erodeBufs[t], depositBufs[t]
		for i := 0; i < nCells; i++ {
			finalErode[i] += eb[i]
			finalDeposit[i] += db[i]
		}
	}

	var stats Stats
	data := height.Data()
	for i := 0; i < nCells; i++ {
		stats.TotalEroded += finalErode[i]
		stats.TotalDeposited += finalDeposit[i]
		nh := float64(data[i]) + finalDeposit[i] - finalErode[i]
		if nh < 0 {
			nh = 0
		}
		data[i] = float32(nh)
	}
	stats.AppliedDroplets = p.NumDroplets

	return stats, grid.FromData(w, h, finalErode), grid.FromData(w, h, finalDeposit)
}

func simulateDroplet(height grid.Grid2D[float32], p Params, di int, erodeBuf, depositBuf []float64) {
	w, h := height.W(), height.H()

	localState := p.WorldSeed ^ int64(di)*2654435761
	rng := mathx.NewRand(mathx.Splitmix(&localState))

	pos := mgl64.Vec2{rng.Float64() * float64(w-1), rng.Float64() * float64(h-1)}
	dir := mgl64.Vec2{}
	speed := p.InitSpeed
	water := p.InitWater
	sediment := 0.0

	for step := 0; step < p.MaxSteps; step++ {
		hHere, gx, gy := heightAndGradient(height, pos.X(), pos.Y())

		dir = dir.Mul(p.Inertia).Sub(mgl64.Vec2{gx, gy}.Mul(1 - p.Inertia))
		if dir.Len() == 0 {
			theta := rng.Float64() * 2 * math.Pi
			dir = mgl64.Vec2{math.Cos(theta) * 1e-6, math.Sin(theta) * 1e-6}
		}
		dir = dir.Normalize()

		pos = pos.Add(dir.Mul(p.StepSize))
		if pos.X() < 0 || pos.X() > float64(w-1) || pos.Y() < 0 || pos.Y() > float64(h-1) {
			break
		}

		newHeight := sampleBilinear(height, pos.X(), pos.Y())
		deltaH := newHeight - hHere

		speed = math.Sqrt(math.Max(0, speed*speed+(-deltaH)*p.Gravity))
		slope := math.Max(1e-6, -deltaH/p.StepSize)
		capacity := math.Max(0, p.CapacityFactor*speed*water*slope)

		if sediment > capacity {
			deposit := math.Min(sediment, p.DepositRate*(sediment-capacity))
			accumulateQuad(depositBuf, w, h, pos.X(), pos.Y(), deposit)
			sediment -= deposit
		} else {
			erode := p.ErodeRate * p.CapacityFactor * (capacity - sediment)
			erode = math.Min(erode, p.MaxErodePerStep)
			erode = math.Min(erode, math.Max(0, newHeight))
			if erode > 0 {
				accumulateQuad(erodeBuf, w, h, pos.X(), pos.Y(), erode)
				sediment += erode
			}
		}

		water *= 1 - p.EvaporateRate
		if water < p.MinWater || speed < p.MinSpeed {
			break
		}
	}
}

// sampleBilinear reads the grid at a fractional position, clamping to the
// domain.
func sampleBilinear(g grid.Grid2D[float32], fx, fy float64) float64 {
	w, h := g.W(), g.H()
	fx = clampF(fx, 0, float64(w-1))
	fy = clampF(fy, 0, float64(h-1))
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	x1 := minInt(x0+1, w-1)
	y1 := minInt(y0+1, h-1)
	sx := fx - float64(x0)
	sy := fy - float64(y0)
	v00 := float64(g.At(x0, y0))
	v10 := float64(g.At(x1, y0))
	v01 := float64(g.At(x0, y1))
	v11 := float64(g.At(x1, y1))
	a := v00*(1-sx) + v10*sx
	b := v01*(1-sx) + v11*sx
	return a*(1-sy) + b*sy
}

// heightAndGradient samples the height and its central-difference gradient
// with a half step of one cell.
func heightAndGradient(g grid.Grid2D[float32], fx, fy float64) (hOut, gx, gy float64) {
	const eps = 1.0
	hOut = sampleBilinear(g, fx, fy)
	gx = (sampleBilinear(g, fx+eps, fy) - sampleBilinear(g, fx-eps, fy)) * 0.5 / eps
	gy = (sampleBilinear(g, fx, fy+eps) - sampleBilinear(g, fx, fy-eps)) * 0.5 / eps
	return hOut, gx, gy
}

// accumulateQuad splits amount over the four cells enclosing (fx, fy) with
// bilinear weights, clamped to the domain.
func accumulateQuad(buf []float64, w, h int, fx, fy float64, amount float64) {
	if amount == 0 {
		return
	}
	fx = clampF(fx, 0, float64(w-1))
	fy = clampF(fy, 0, float64(h-1))
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	x1 := minInt(x0+1, w-1)
	y1 := minInt(y0+1, h-1)
	sx := fx - float64(x0)
	sy := fy - float64(y0)

	buf[y0*w+x0] += amount * (1 - sx) * (1 - sy)
	buf[y0*w+x1] += amount * sx * (1 - sy)
	buf[y1*w+x0] += amount * (1 - sx) * sy
	buf[y1*w+x1] += amount * sx * sy
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
