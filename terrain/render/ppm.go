package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WritePPM encodes raw RGB as a binary PPM image.
func WritePPM(w io.Writer, width, height int, rgb []byte) error {
	if len(rgb) != width*height*3 {
		return fmt.Errorf("encode ppm: %d bytes for %dx%d image", len(rgb), width, height)
	}
	if _, err := fmt.Fprintf(w, "P6\n%d %d\n255\n", width, height); err != nil {
		return fmt.Errorf("encode ppm header: %w", err)
	}
	if _, err := w.Write(rgb); err != nil {
		return fmt.Errorf("encode ppm pixels: %w", err)
	}
	return nil
}

// DirSink persists pipeline outputs to a directory: one PPM per image and an
// objects.csv for the instance rows.
type DirSink struct {
	Dir string
}

// WriteImage writes one raster as <name>.ppm.
func (s DirSink) WriteImage(name string, w, h int, rgb []byte) error {
	if err := os.MkdirAll(s.Dir, 0777); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(s.Dir, name+".ppm")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := WritePPM(f, w, h, rgb); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// WriteObjects writes the instance rows as objects.csv.
func (s DirSink) WriteObjects(rows [][]string) error {
	if err := os.MkdirAll(s.Dir, 0777); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(s.Dir, "objects.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
