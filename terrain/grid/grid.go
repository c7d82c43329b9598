// Package grid provides the dense 2D raster container shared by every
// pipeline stage. A Grid2D is row-major with immutable dimensions; all grids
// belonging to one pipeline run share the same width and height.
package grid

import "golang.org/x/exp/constraints"

// Grid2D is a dense row-major raster. Construct one with New; the zero value
// has no backing storage.
type Grid2D[T any] struct {
	w, h int
	data []T
}

// New allocates a zeroed w×h grid. Dimensions must be positive; the pipeline
// validates them before any grid is built.
func New[T any](w, h int) Grid2D[T] {
	return Grid2D[T]{w: w, h: h, data: make([]T, w*h)}
}

// FromData wraps an existing row-major slice of length w*h.
func FromData[T any](w, h int, data []T) Grid2D[T] {
	return Grid2D[T]{w: w, h: h, data: data}
}

// W returns the grid width.
func (g Grid2D[T]) W() int { return g.w }

// H returns the grid height.
func (g Grid2D[T]) H() int { return g.h }

// Len returns the cell count w*h.
func (g Grid2D[T]) Len() int { return len(g.data) }

// Index returns the linear index of (x, y).
func (g Grid2D[T]) Index(x, y int) int { return y*g.w + x }

// At returns the value at (x, y).
func (g Grid2D[T]) At(x, y int) T { return g.data[y*g.w+x] }

// Set stores v at (x, y).
func (g Grid2D[T]) Set(x, y int, v T) { g.data[y*g.w+x] = v }

// AtClamped returns the value at (x, y) with coordinates clamped into the
// grid bounds.
func (g Grid2D[T]) AtClamped(x, y int) T {
	if x < 0 {
		x = 0
	} else if x >= g.w {
		x = g.w - 1
	}
	if y < 0 {
		y = 0
	} else if y >= g.h {
		y = g.h - 1
	}
	return g.data[y*g.w+x]
}

// Fill sets every cell to v.
func (g Grid2D[T]) Fill(v T) {
	for i := range g.data {
		g.data[i] = v
	}
}

// Clone returns a deep copy sharing no storage with g.
func (g Grid2D[T]) Clone() Grid2D[T] {
	d := make([]T, len(g.data))
	copy(d, g.data)
	return Grid2D[T]{w: g.w, h: g.h, data: d}
}

// Data exposes the backing slice in row-major order.
func (g Grid2D[T]) Data() []T { return g.data }

// SameSize reports whether a and b have identical dimensions.
func SameSize[A, B any](a Grid2D[A], b Grid2D[B]) bool {
	return a.w == b.w && a.h == b.h
}

// MinMax returns the smallest and largest cell values. The grid must be
// non-empty.
func MinMax[T constraints.Ordered](g Grid2D[T]) (lo, hi T) {
	lo, hi = g.data[0], g.data[0]
	for _, v := range g.data[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
