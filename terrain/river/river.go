// Package river extracts a drainage network from the elevation field by
// steepest-descent flow routing and carves the channels into it.
package river

import (
	"math"
	"sort"

	"github.com/dgravesa/go-parallel/parallel"

	"github.com/df-mc/terragen/terrain/grid"
)

// Params configures river extraction and carving. The zero value is usable;
// sensible defaults are applied by WithDefaults.
type Params struct {
	// FlowAccumThreshold marks a cell as river when its accumulation meets
	// it. Zero selects a map-size dependent default.
	FlowAccumThreshold float64
	// MinChannelDepth and MaxChannelDepth bound the carve depth.
	MinChannelDepth float64
	MaxChannelDepth float64
	// WidthMultiplier scales channel width with the square root of flow.
	WidthMultiplier float64
}

// WithDefaults fills unset fields. The accumulation threshold scales with
// map width: larger maps drain more cells per channel.
func (p Params) WithDefaults(width int) Params {
	if p.FlowAccumThreshold == 0 {
		switch {
		case width >= 2048:
			p.FlowAccumThreshold = 4000
		case width >= 1024:
			p.FlowAccumThreshold = 1000
		default:
			p.FlowAccumThreshold = 200
		}
	}
	if p.MinChannelDepth == 0 {
		p.MinChannelDepth = 0.4
	}
	if p.MaxChannelDepth == 0 {
		p.MaxChannelDepth = 6.0
	}
	if p.WidthMultiplier == 0 {
		p.WidthMultiplier = 0.002
	}
	return p
}

// Network is the result of river generation. FlowDir holds, per cell, the
// linear index of the steepest-descent neighbour, or -1 for pits and flats.
type Network struct {
	FlowDir   []int
	FlowAccum grid.Grid2D[float32]
	Mask      grid.Grid2D[uint8]
}

var dx8 = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
var dy8 = [8]int{0, 1, 1, 1, 0, -1, -1, -1}

// Generate routes flow over the elevation field and extracts the river mask.
// The elevation field is left untouched; Carve cuts the channels in a
// separate pass.
func Generate(height grid.Grid2D[float32], p Params, threads int) *Network {
	p = p.WithDefaults(height.W())
	n := &Network{FlowDir: FlowDirections(height, threads)}
	n.FlowAccum = Accumulate(height, n.FlowDir)
	n.Mask = ExtractMask(n.FlowAccum, p.FlowAccumThreshold, threads)
	return n
}

// FlowDirections computes the D8 steepest-descent neighbour for every cell.
// Cells with no strictly lower neighbour get -1; they act as terminal sinks.
// No pit filling is performed.
func FlowDirections(height grid.Grid2D[float32], threads int) []int {
	w, h := height.W(), height.H()
	dir := make([]int, w*h)
	ex := parallel.WithNumGoroutines(threads)
	ex.For(h, func(y, _ int) {
		for x := 0; x < w; x++ {
			i := y*w + x
			hv := float64(height.At(x, y))
			best := -1
			bestDrop := 0.0
			for k := 0; k < 8; k++ {
				nx, ny := x+dx8[k], y+dy8[k]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				dist := 1.0
				if k%2 == 1 {
					dist = math.Sqrt2
				}
				drop := (hv - float64(height.At(nx, ny))) / dist
				if drop > bestDrop {
					bestDrop = drop
					best = ny*w + nx
				}
			}
			dir[i] = best
		}
	})
	return dir
}

// Accumulate computes the contributing area draining through each cell.
// Cells are visited in descending elevation; each forwards its accumulated
// flow to its downslope neighbour. Every upstream contributor is strictly
// higher than its target, so the single pass is exact. The propagation is
// dependency ordered and runs sequentially.
func Accumulate(height grid.Grid2D[float32], flowDir []int) grid.Grid2D[float32] {
	w, h := height.W(), height.H()
	n := w * h
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	data := height.Data()
	sort.Slice(order, func(a, b int) bool { return data[order[a]] > data[order[b]] })

	accum := grid.New[float32](w, h)
	accum.Fill(1)
	fd := accum.Data()
	for _, i := range order {
		if d := flowDir[i]; d != -1 {
			fd[d] += fd[i]
		}
	}
	return accum
}

// ExtractMask thresholds the accumulation raster into a {0, 255} mask.
func ExtractMask(accum grid.Grid2D[float32], threshold float64, threads int) grid.Grid2D[uint8] {
	w, h := accum.W(), accum.H()
	mask := grid.New[uint8](w, h)
	ad, md := accum.Data(), mask.Data()
	ex := parallel.WithNumGoroutines(threads)
	ex.For(h, func(y, _ int) {
		for x := 0; x < w; x++ {
			i := y*w + x
			if float64(ad[i]) >= threshold {
				md[i] = 255
			}
		}
	})
	return mask
}

// Carve lowers the terrain around every river cell. Depth grows
// logarithmically with flow and fades linearly with the 4-connected distance
// from the channel; the result is clamped at zero. River cells seed the BFS
// at distance zero in row-major order.
func Carve(height grid.Grid2D[float32], n *Network, p Params, threads int) {
	p = p.WithDefaults(height.W())
	w, h := height.W(), height.H()
	nCells := w * h

	const unreached = int(^uint(0) >> 1)
	dist := make([]int, nCells)
	queue := make([]int, 0, nCells)
	md := n.Mask.Data()
	for i := 0; i < nCells; i++ {
		if md[i] != 0 {
			dist[i] = 0
			queue = append(queue, i)
		} else {
			dist[i] = unreached
		}
	}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		cx, cy := cur%w, cur/w
		nd := dist[cur] + 1
		for _, off := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := cx+off[0], cy+off[1]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			ni := ny*w + nx
			if dist[ni] > nd {
				dist[ni] = nd
				queue = append(queue, ni)
			}
		}
	}

	hd := height.Data()
	ad := n.FlowAccum.Data()
	ex := parallel.WithNumGoroutines(threads)
	ex.For(h, func(y, _ int) {
		for x := 0; x < w; x++ {
			i := y*w + x
			if dist[i] == unreached {
				continue
			}
			flow := float64(ad[i])
			width := p.WidthMultiplier * math.Sqrt(math.Max(1, flow))
			depth := p.MinChannelDepth + (p.MaxChannelDepth-p.MinChannelDepth)*math.Min(1, math.Log1p(flow)/8)
			depth = math.Min(math.Max(depth, p.MinChannelDepth), p.MaxChannelDepth)
			falloff := 1.0
			if dist[i] > 0 {
				radius := math.Max(1, width)
				falloff = math.Max(0, 1-float64(dist[i])/(radius*1.5))
			}
			nh := float64(hd[i]) - depth*falloff
			if nh < 0 {
				nh = 0
			}
			hd[i] = float32(nh)
		}
	})
}
