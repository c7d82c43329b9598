// Package object scatters vegetation and prop instances over a classified
// terrain. Placement is probability driven per cell, with per-definition
// habitat filters, minimum spacing enforced through a spatial hash and
// optional one-level clustering.
package object

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df-mc/terragen/terrain/biome"
)

// Def describes one placeable object kind. Field names mirror the external
// placement file keys. Densities are expressed per 1000 m² so definitions stay
// resolution independent.
type Def struct {
	Name        string `json:"name"`
	Model       string `json:"model"`
	Placeholder bool   `json:"placeholder"`

	DensityPer1000M2 float64 `json:"density_per_1000m2"`
	MinDistanceM     float64 `json:"min_distance_m"`

	ScaleMin       float64 `json:"scale_min"`
	ScaleMax       float64 `json:"scale_max"`
	YawVarianceDeg float64 `json:"yaw_variance_deg"`

	ElevationMin float64 `json:"elevation_min"`
	ElevationMax float64 `json:"elevation_max"`
	SlopeMin     float64 `json:"slope_min"`
	SlopeMax     float64 `json:"slope_max"`

	RequiresWater bool `json:"requires_water"`
	PrefersCoast  bool `json:"prefers_coast"`

	Cluster *Cluster `json:"cluster,omitempty"`
}

// Cluster spawns additional children around an accepted parent. Children are
// placed with the parent's definition at half the minimum distance (at least
// 0.4 m) and never cluster themselves.
type Cluster struct {
	Count  int     `json:"count"`
	Radius float64 `json:"radius"`
}

// UnmarshalJSON fills absent keys with the standard defaults before applying
// the record.
func (d *Def) UnmarshalJSON(b []byte) error {
	type raw Def
	r := raw{
		Name:           "obj",
		MinDistanceM:   1.0,
		ScaleMin:       1.0,
		ScaleMax:       1.0,
		YawVarianceDeg: 180.0,
		ElevationMax:   1.0,
		SlopeMax:       10.0,
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	*d = Def(r)
	return nil
}

// UnmarshalJSON applies the default count and radius for keys the record
// leaves out.
func (c *Cluster) UnmarshalJSON(b []byte) error {
	type raw Cluster
	r := raw{Count: 3, Radius: 2.0}
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	*c = Cluster(r)
	return nil
}

// Config tunes a placement run. BiomeObjects keys are biome display or
// compact names; entries under unrecognised names are ignored.
type Config struct {
	// Seed feeds the per-cell decision streams.
	Seed uint64 `json:"seed"`
	// GlobalMaxInstances caps the total accepted count.
	GlobalMaxInstances int `json:"global_max_instances"`
	// DefaultMinDistanceM sizes the spatial hash buckets.
	DefaultMinDistanceM float64 `json:"default_min_distance_m"`
	// BiomeObjects lists the candidate definitions per biome.
	BiomeObjects map[string][]Def `json:"biome_objects"`
	// Serial forces single-goroutine placement so the accepted set is
	// bit-exact across runs. Concurrent placement keeps every per-cell
	// decision deterministic but resolves spacing conflicts in arrival
	// order.
	Serial bool `json:"-"`
}

// WithDefaults fills unset fields with the standard values.
func (c Config) WithDefaults() Config {
	if c.Seed == 0 {
		c.Seed = 424242
	}
	if c.GlobalMaxInstances == 0 {
		c.GlobalMaxInstances = 500000
	}
	if c.DefaultMinDistanceM == 0 {
		c.DefaultMinDistanceM = 2.0
	}
	return c
}

// LoadConfig parses a placement configuration file.
func LoadConfig(data []byte) (Config, error) {
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse placement config: %w", err)
	}
	return c.WithDefaults(), nil
}

// Instance is one accepted placement. Pos holds the world position in metres
// with Z carrying the normalised surface elevation.
type Instance struct {
	ID     int
	Name   string
	Model  string
	PX, PY int
	Pos    mgl64.Vec3
	Yaw    float64
	Scale  float64
	Biome  biome.ID
}

// ModelRef returns the model path, or a placeholder reference for definitions
// without one.
func (i Instance) ModelRef() string {
	if i.Model == "" {
		return "PLACEHOLDER:" + i.Name
	}
	return i.Model
}
