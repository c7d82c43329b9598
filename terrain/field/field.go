// Package field provides raster analysis shared by the classification and
// placement stages: slope maps, water masks and BFS distance transforms.
package field

import (
	"math"

	"github.com/dgravesa/go-parallel/parallel"

	"github.com/df-mc/terragen/terrain/grid"
)

// Unreached marks cells not connected to any BFS source.
const Unreached = int(^uint(0) >> 1)

// DistanceBFS computes the 4-connected tile distance from every cell to the
// nearest source cell. Sources are identified by the predicate over linear
// indices; they seed the queue at distance zero in row-major order.
func DistanceBFS(w, h int, source func(i int) bool) []int {
	n := w * h
	dist := make([]int, n)
	queue := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if source(i) {
			dist[i] = 0
			queue = append(queue, i)
		} else {
			dist[i] = Unreached
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
	return dist
}

// Gradient computes the central-difference gradient magnitude of the height
// field, with borders clamped.
func Gradient(height grid.Grid2D[float32], threads int) grid.Grid2D[float32] {
	w, h := height.W(), height.H()
	out := grid.New[float32](w, h)
	ex := parallel.WithNumGoroutines(threads)
	ex.For(h, func(y, _ int) {
		for x := 0; x < w; x++ {
			c := float64(height.At(x, y))
			left, right, up, down := c, c, c, c
			if x > 0 {
				left = float64(height.At(x-1, y))
			}
			if x+1 < w {
				right = float64(height.At(x+1, y))
			}
			if y > 0 {
				up = float64(height.At(x, y-1))
			}
			if y+1 < h {
				down = float64(height.At(x, y+1))
			}
			gx := (right - left) * 0.5
			gy := (down - up) * 0.5
			out.Set(x, y, float32(math.Sqrt(gx*gx+gy*gy)))
		}
	})
	return out
}

// Slope normalises the gradient magnitude by the expected maximum gradient
// and clamps to [0, 1].
func Slope(height grid.Grid2D[float32], expectedMaxGradient float64, threads int) grid.Grid2D[float32] {
	g := Gradient(height, threads)
	inv := 1 / math.Max(1e-6, expectedMaxGradient)
	d := g.Data()
	for i, v := range d {
		s := float64(v) * inv
		if s > 1 {
			s = 1
		}
		d[i] = float32(s)
	}
	return g
}

// WaterMask marks every cell at or below the lake threshold. Border-reachable
// low cells form the ocean and the remaining low cells are isolated lakes;
// both count as water for placement and coast distance purposes.
func WaterMask(height grid.Grid2D[float32], lakeThreshold float64, threads int) grid.Grid2D[uint8] {
	w, h := height.W(), height.H()
	mask := grid.New[uint8](w, h)
	hd, md := height.Data(), mask.Data()
	ex := parallel.WithNumGoroutines(threads)
	ex.For(h, func(y, _ int) {
		for x := 0; x < w; x++ {
			i := y*w + x
			if float64(hd[i]) <= lakeThreshold {
				md[i] = 1
			}
		}
	})
	return mask
}
