package noise

import "testing"

func TestAtWithinRange(t *testing.T) {
	t.Parallel()
	n := New(1337)
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := n.At(float64(x)+0.37, float64(y)+0.71, 0.05)
			if v < -1 || v > 1 {
				t.Fatalf("noise at (%d,%d) out of [-1,1]: %v", x, y, v)
			}
		}
	}
}

func TestTableDeterministic(t *testing.T) {
	t.Parallel()
	a, b := New(42), New(42)
	for i := 0; i < 256; i++ {
		if a.p[i] != b.p[i] {
			t.Fatalf("permutation diverged at %d", i)
		}
	}
	if a.p[100] != a.p[100+256] {
		t.Fatal("permutation not duplicated for wraparound")
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	t.Parallel()
	a, b := New(1), New(2)
	same := true
	for i := 0; i < 256; i++ {
		if a.p[i] != b.p[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical permutations")
	}
}

func TestFBMRangeAndVariation(t *testing.T) {
	t.Parallel()
	n := New(7)
	var lo, hi float64 = 1, -1
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			v := n.FBM(float64(x), float64(y), 0.0035, 5, 2.0, 0.5)
			if v < -1 || v > 1 {
				t.Fatalf("fbm out of [-1,1]: %v", v)
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if hi-lo < 0.05 {
		t.Fatalf("fbm field suspiciously flat: range %v", hi-lo)
	}
}

func TestZeroOctaves(t *testing.T) {
	t.Parallel()
	n := New(3)
	if v := n.FBM(10, 10, 0.01, 0, 2, 0.5); v != 0 {
		t.Fatalf("zero octaves should yield 0, got %v", v)
	}
}
