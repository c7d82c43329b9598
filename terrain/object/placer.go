package object

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/dgravesa/go-parallel/parallel"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df-mc/terragen/terrain/biome"
	"github.com/df-mc/terragen/terrain/grid"
	"github.com/df-mc/terragen/terrain/internal/mathx"
)

// Placer places object instances over one raster. A Placer is reusable;
// every Place call starts from empty storage.
type Placer struct {
	w, h       int
	worldSizeM float64
	cellSizeM  float64
	cfg        Config

	gridW, gridH int
	buckets      [][]int32
	mu           sync.Mutex
	placed       []Instance
	count        atomic.Int64
}

// NewPlacer prepares placement over a w×h raster. A non-positive
// worldSizeMeters maps one cell to one metre.
func NewPlacer(w, h int, worldSizeMeters float64, cfg Config) *Placer {
	cfg = cfg.WithDefaults()
	if worldSizeMeters <= 0 {
		worldSizeMeters = float64(max(w, h))
	}
	side := max(1, int(math.Ceil(worldSizeMeters/math.Max(0.5, cfg.DefaultMinDistanceM))))
	return &Placer{
		w: w, h: h,
		worldSizeM: worldSizeMeters,
		cellSizeM:  worldSizeMeters / float64(max(w, h)),
		cfg:        cfg,
		gridW:      side,
		gridH:      side,
	}
}

// Place runs placement over the rasters and returns the accepted instances in
// id order. The water mask and coast distances may be zero-length to place
// without water or coast influence.
func (p *Placer) Place(height, slope grid.Grid2D[float32], waterMask grid.Grid2D[uint8], coastDist []int, biomes grid.Grid2D[biome.ID], threads int) []Instance {
	p.placed = nil
	p.buckets = make([][]int32, p.gridW*p.gridH)
	p.count.Store(0)

	candidates := map[biome.ID][]Def{}
	for name, defs := range p.cfg.BiomeObjects {
		if id := biome.ParseID(name); id != biome.Unknown {
			candidates[id] = defs
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	hd := height.Data()
	sd := slope.Data()
	var wd []uint8
	if waterMask.Len() == p.w*p.h {
		wd = waterMask.Data()
	}
	bd := biomes.Data()
	limit := int64(p.cfg.GlobalMaxInstances)

	row := func(y int) {
		if p.count.Load() >= limit {
			return
		}
		for x := 0; x < p.w; x++ {
			if p.count.Load() >= limit {
				return
			}
			i := y*p.w + x
			defs, ok := candidates[bd[i]]
			if !ok {
				continue
			}
			cellSeed := mathx.MixCoord(mathx.MixCoord(p.cfg.Seed, uint64(x)), uint64(y))
			for d := range defs {
				if p.count.Load() >= limit {
					return
				}
				p.attempt(x, y, &defs[d], hd, sd, wd, coastDist, &cellSeed, bd[i], true)
			}
		}
	}

	if p.cfg.Serial || threads <= 1 {
		for y := 0; y < p.h; y++ {
			row(y)
		}
	} else {
		parallel.WithNumGoroutines(threads).For(p.h, func(y, _ int) { row(y) })
	}
	return p.placed
}

// probability derives the per-cell acceptance probability for one definition.
// Habitat filters reject outright; coast proximity boosts and steep slopes
// damp the density-derived base rate.
func (p *Placer) probability(d *Def, elev, sl float64, isWater bool, coast int) float64 {
	base := d.DensityPer1000M2 / 1000 * p.cellSizeM * p.cellSizeM
	if base <= 0 {
		return 0
	}
	if elev < d.ElevationMin || elev > d.ElevationMax {
		return 0
	}
	if sl < d.SlopeMin || sl > d.SlopeMax {
		return 0
	}
	if d.RequiresWater && !isWater {
		return 0
	}
	boost := 1.0
	if d.PrefersCoast && coast >= 0 && coast <= 3 {
		boost += 0.65 * (1 - float64(coast)/3)
	}
	penalty := 1.0
	if sl > 0.6 {
		penalty = 0.3
	} else if sl > 0.3 {
		penalty = 0.6
	}
	return math.Min(base*boost*penalty, 0.95)
}

func rand01(state *uint64) float64 {
	return mathx.Unit64(mathx.SplitMix64(state))
}

func (p *Placer) attempt(x, y int, d *Def, height []float32, slope []float32, water []uint8, coastDist []int, seed *uint64, bid biome.ID, cluster bool) bool {
	i := y*p.w + x
	elev, sl := float64(height[i]), float64(slope[i])
	isWater := water != nil && water[i] != 0
	coast := -1
	if len(coastDist) > 0 {
		coast = coastDist[i]
	}

	prob := p.probability(d, elev, sl, isWater, coast)
	if prob <= 0 {
		return false
	}

	success := false
	if prob > 0.2 {
		success = rand01(seed) <= prob
	} else {
		// Approximate a Poisson expectation with a few small trials.
		trials := max(1, int(math.Ceil(prob*10)))
		for t := 0; t < trials; t++ {
			if rand01(seed) <= prob {
				success = true
				break
			}
		}
	}
	if !success {
		return false
	}

	jx := rand01(seed) - 0.5
	jy := rand01(seed) - 0.5
	wx := (float64(x) + 0.5 + jx*0.9) * p.cellSizeM
	wy := (float64(y) + 0.5 + jy*0.9) * p.cellSizeM

	// Yaw and scale are drawn before the spacing check so the per-cell
	// stream does not depend on neighbouring placements.
	yaw := rand01(seed) * d.YawVarianceDeg
	scale := d.ScaleMin + rand01(seed)*(d.ScaleMax-d.ScaleMin)

	id, ok := p.insert(x, y, wx, wy, elev, yaw, scale, d, bid)
	if !ok {
		return false
	}

	if cluster && d.Cluster != nil {
		child := *d
		child.MinDistanceM = math.Max(0.4, d.MinDistanceM*0.5)
		child.Cluster = nil
		for c := 0; c < d.Cluster.Count; c++ {
			clusterSeed := uint64(id)*1009 + uint64(c)*7919 + p.cfg.Seed
			ang := rand01(&clusterSeed) * 2 * math.Pi
			rad := rand01(&clusterSeed) * d.Cluster.Radius
			cx := wx + math.Cos(ang)*rad
			cy := wy + math.Sin(ang)*rad
			px := min(p.w-1, max(0, int(math.Floor(cx/p.cellSizeM))))
			py := min(p.h-1, max(0, int(math.Floor(cy/p.cellSizeM))))
			p.attempt(px, py, &child, height, slope, water, coastDist, &clusterSeed, bid, false)
		}
	}
	return true
}

// insert checks spacing against the 5×5 bucket neighbourhood and appends the
// instance. Check and append run under one lock so two concurrent placements
// cannot both pass against a stale view.
func (p *Placer) insert(x, y int, wx, wy, elev, yaw, scale float64, d *Def, bid biome.ID) (int, bool) {
	gx := min(p.gridW-1, max(0, int(math.Floor(wx/p.worldSizeM*float64(p.gridW)))))
	gy := min(p.gridH-1, max(0, int(math.Floor(wy/p.worldSizeM*float64(p.gridH)))))
	minSq := d.MinDistanceM * d.MinDistanceM

	p.mu.Lock()
	defer p.mu.Unlock()

	if int64(len(p.placed)) >= int64(p.cfg.GlobalMaxInstances) {
		return 0, false
	}
	for oy := -2; oy <= 2; oy++ {
		for ox := -2; ox <= 2; ox++ {
			nx, ny := gx+ox, gy+oy
			if nx < 0 || ny < 0 || nx >= p.gridW || ny >= p.gridH {
				continue
			}
			for _, pid := range p.buckets[ny*p.gridW+nx] {
				other := &p.placed[pid]
				dx, dy := other.Pos[0]-wx, other.Pos[1]-wy
				if dx*dx+dy*dy < minSq {
					return 0, false
				}
			}
		}
	}

	id := len(p.placed)
	p.placed = append(p.placed, Instance{
		ID:    id,
		Name:  d.Name,
		Model: d.Model,
		PX:    x, PY: y,
		Pos:   mgl64.Vec3{wx, wy, elev},
		Yaw:   yaw,
		Scale: scale,
		Biome: bid,
	})
	p.buckets[gy*p.gridW+gx] = append(p.buckets[gy*p.gridW+gx], int32(id))
	p.count.Add(1)
	return id, true
}
