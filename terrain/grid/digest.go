package grid

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// DigestFloat32 returns a content hash of the grid, including its
// dimensions. Equal digests imply bit-identical rasters.
func DigestFloat32(g Grid2D[float32]) uint64 {
	d := xxhash.New()
	writeDims(d, g.w, g.h)
	var buf [4]byte
	for _, v := range g.data {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// DigestFloat64 is DigestFloat32 for double-precision grids.
func DigestFloat64(g Grid2D[float64]) uint64 {
	d := xxhash.New()
	writeDims(d, g.w, g.h)
	var buf [8]byte
	for _, v := range g.data {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// DigestUint8 hashes byte-valued rasters such as river masks.
func DigestUint8(g Grid2D[uint8]) uint64 {
	d := xxhash.New()
	writeDims(d, g.w, g.h)
	_, _ = d.Write(g.data)
	return d.Sum64()
}

// DigestUint16 hashes 16-bit rasters such as biome maps.
func DigestUint16[T ~uint16](g Grid2D[T]) uint64 {
	d := xxhash.New()
	writeDims(d, g.w, g.h)
	var buf [2]byte
	for _, v := range g.data {
		binary.LittleEndian.PutUint16(buf[:], uint16(v))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

func writeDims(d *xxhash.Digest, w, h int) {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[:4], uint32(w))
	binary.LittleEndian.PutUint32(buf[4:], uint32(h))
	_, _ = d.Write(buf[:])
}
