package climate

import (
	"testing"

	"github.com/df-mc/terragen/terrain/grid"
)

func flatHeight(w, h int, v float32) grid.Grid2D[float32] {
	g := grid.New[float32](w, h)
	g.Fill(v)
	return g
}

func TestGenerateRange(t *testing.T) {
	t.Parallel()
	temp, moist := Generate(flatHeight(64, 64, 0.5), Config{Seed: 42}, 4)
	for _, v := range temp.Data() {
		if v < 0 || v > 1 {
			t.Fatalf("temperature out of [0,1]: %v", v)
		}
	}
	for _, v := range moist.Data() {
		if v < 0 || v > 1 {
			t.Fatalf("moisture out of [0,1]: %v", v)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	t.Parallel()
	h := flatHeight(32, 48, 0.3)
	t1, m1 := Generate(h, Config{Seed: 9}, 1)
	t2, m2 := Generate(h, Config{Seed: 9}, 8)
	if grid.DigestFloat32(t1) != grid.DigestFloat32(t2) {
		t.Fatal("temperature depends on goroutine count")
	}
	if grid.DigestFloat32(m1) != grid.DigestFloat32(m2) {
		t.Fatal("moisture depends on goroutine count")
	}
}

// Latitude coupling: the temperature noise varies slowly at this size, so the
// mid row must be warmer on average than the border rows.
func TestLatitudeWarmsEquator(t *testing.T) {
	t.Parallel()
	const w, h = 64, 65
	temp, _ := Generate(flatHeight(w, h, 0.5), Config{Seed: 11}, 2)
	rowMean := func(y int) float64 {
		var s float64
		for x := 0; x < w; x++ {
			s += float64(temp.At(x, y))
		}
		return s / w
	}
	if rowMean(h/2) <= rowMean(0) || rowMean(h/2) <= rowMean(h-1) {
		t.Fatalf("equator row not warmer: mid=%v top=%v bottom=%v", rowMean(h/2), rowMean(0), rowMean(h-1))
	}
}

// Elevation damping: higher terrain holds less moisture for the same noise.
func TestElevationDriesMoisture(t *testing.T) {
	t.Parallel()
	_, low := Generate(flatHeight(32, 32, 0.0), Config{Seed: 13}, 2)
	_, high := Generate(flatHeight(32, 32, 1.0), Config{Seed: 13}, 2)
	var lowSum, highSum float64
	for i := range low.Data() {
		lowSum += float64(low.Data()[i])
		highSum += float64(high.Data()[i])
	}
	if highSum >= lowSum {
		t.Fatalf("moisture should fall with elevation: low=%v high=%v", lowSum, highSum)
	}
}
