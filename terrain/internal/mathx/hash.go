package mathx

// Splitmix advances state by the 32-bit golden ratio and returns a mixed
// value. Used to derive independent per-task seeds from a world seed.
func Splitmix(state *int64) int64 {
	*state += 2654435769
	z := *state
	z = (z ^ (z >> 30)) * 2246822507
	z = (z ^ (z >> 27)) * 3255373325
	return z ^ (z >> 31)
}

// SplitMix64 is the 64-bit finalizer variant. It advances state and returns
// the next value of the stream.
func SplitMix64(state *uint64) uint64 {
	*state += 0x9e3779b97f4a7c15
	z := *state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Unit64 maps a SplitMix64 draw to a uniform float64 in [0, 1).
func Unit64(z uint64) float64 {
	return float64(z>>11) / (1 << 53)
}

// MixCoord folds a coordinate component into an accumulator seed. The mixing
// follows the usual hash-combine recipe so that neighbouring cells produce
// unrelated streams.
func MixCoord(seed uint64, v uint64) uint64 {
	return seed ^ (v + 0x9e3779b97f4a7c15 + (seed << 6) + (seed >> 2))
}
