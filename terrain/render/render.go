// Package render turns pipeline rasters into RGB images and object instances
// into CSV rows. Images are raw row-major RGB byte slices, top row first,
// suitable for PPM encoding.
package render

import (
	"strconv"

	"github.com/segmentio/fasthash/fnv1a"

	"github.com/df-mc/terragen/terrain/biome"
	"github.com/df-mc/terragen/terrain/grid"
	"github.com/df-mc/terragen/terrain/object"
)

// Greyscale maps a unit-range raster to grey levels.
func Greyscale(g grid.Grid2D[float32]) []byte {
	rgb := make([]byte, g.Len()*3)
	for i, v := range g.Data() {
		c := byte(clampUnit(float64(v)) * 255)
		rgb[i*3], rgb[i*3+1], rgb[i*3+2] = c, c, c
	}
	return rgb
}

// Normalized maps an arbitrary non-negative raster to grey levels scaled by
// its maximum. An all-zero raster renders black.
func Normalized(g grid.Grid2D[float64]) []byte {
	maxV := 0.0
	for _, v := range g.Data() {
		if v > maxV {
			maxV = v
		}
	}
	rgb := make([]byte, g.Len()*3)
	if maxV <= 0 {
		return rgb
	}
	for i, v := range g.Data() {
		c := byte(clampUnit(v/maxV) * 255)
		rgb[i*3], rgb[i*3+1], rgb[i*3+2] = c, c, c
	}
	return rgb
}

// Mask renders nonzero cells white on black.
func Mask(g grid.Grid2D[uint8]) []byte {
	rgb := make([]byte, g.Len()*3)
	for i, v := range g.Data() {
		if v != 0 {
			rgb[i*3], rgb[i*3+1], rgb[i*3+2] = 255, 255, 255
		}
	}
	return rgb
}

var biomePalette = map[biome.ID][3]byte{
	biome.Ocean:              {24, 64, 160},
	biome.Beach:              {238, 214, 175},
	biome.Lake:               {36, 120, 200},
	biome.Desert:             {210, 180, 140},
	biome.Savanna:            {189, 183, 107},
	biome.Grassland:          {130, 200, 80},
	biome.Shrubland:          {160, 180, 90},
	biome.TropicalRainforest: {16, 120, 45},
	biome.SeasonalForest:     {34, 139, 34},
	biome.BorealForest:       {80, 120, 70},
	biome.Tundra:             {180, 190, 200},
	biome.Snow:               {240, 240, 250},
	biome.Rocky:              {140, 130, 120},
	biome.Mountain:           {120, 120, 140},
	biome.Swamp:              {34, 85, 45},
	biome.Mangrove:           {31, 90, 42},
}

// BiomeColor returns the palette color of a biome. Unmapped variants render
// magenta so they stand out in debug images.
func BiomeColor(id biome.ID) [3]byte {
	if c, ok := biomePalette[id]; ok {
		return c
	}
	return [3]byte{255, 0, 255}
}

// Biomes renders a biome map with the fixed palette.
func Biomes(g grid.Grid2D[biome.ID]) []byte {
	rgb := make([]byte, g.Len()*3)
	for i, id := range g.Data() {
		c := BiomeColor(id)
		rgb[i*3], rgb[i*3+1], rgb[i*3+2] = c[0], c[1], c[2]
	}
	return rgb
}

// ObjectColor derives a stable debug color from an object name.
func ObjectColor(name string) [3]byte {
	h := fnv1a.HashString32(name)
	return [3]byte{byte(h), byte(h >> 8), byte(h >> 16)}
}

// Objects renders placed instances as single colored pixels on white.
func Objects(w, h int, placed []object.Instance) []byte {
	rgb := make([]byte, w*h*3)
	for i := range rgb {
		rgb[i] = 255
	}
	for _, inst := range placed {
		if inst.PX < 0 || inst.PY < 0 || inst.PX >= w || inst.PY >= h {
			continue
		}
		c := ObjectColor(inst.Name)
		i := (inst.PY*w + inst.PX) * 3
		rgb[i], rgb[i+1], rgb[i+2] = c[0], c[1], c[2]
	}
	return rgb
}

// ObjectRows converts instances to CSV rows, header first.
func ObjectRows(placed []object.Instance) [][]string {
	rows := make([][]string, 0, len(placed)+1)
	rows = append(rows, []string{"id", "name", "model", "px", "py", "wx", "wy", "wz", "yaw", "scale", "biome"})
	for _, inst := range placed {
		rows = append(rows, []string{
			strconv.Itoa(inst.ID),
			inst.Name,
			inst.ModelRef(),
			strconv.Itoa(inst.PX),
			strconv.Itoa(inst.PY),
			formatFloat(inst.Pos[0]),
			formatFloat(inst.Pos[1]),
			formatFloat(inst.Pos[2]),
			formatFloat(inst.Yaw),
			formatFloat(inst.Scale),
			inst.Biome.String(),
		})
	}
	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
