// Package solar implements the geometric pipeline for estimating the
// annual energy capture of a flat collector: projecting solar-position
// samples into sun-direction vectors, modelling collector orientation as
// a rotated surface normal, integrating incident energy over a year of
// samples, and searching for the fixed tilt that maximizes annual yield.
package solar

import (
	"math"
	"time"
)

const (
	// PanelArea is the collector surface area in m². All energy figures
	// are for a single square metre of collector.
	PanelArea = 1.0

	// SampleInterval is the fixed cadence of the position-sample series.
	SampleInterval = 10 * time.Minute

	// intervalHours is the integration step in hours.
	intervalHours = 1.0 / 6.0
)

// PositionSample is a single solar-position observation paired with its
// clear-sky direct-normal irradiance.
type PositionSample struct {
	Time time.Time

	// ApparentZenith is the angle between the sun and vertical, in
	// degrees (0 = sun directly overhead).
	ApparentZenith float64

	// Azimuth is the compass bearing of the sun in degrees
	// (0 = north, increasing clockwise).
	Azimuth float64

	// DNI is the clear-sky direct-normal irradiance in W/m².
	DNI float64
}

// Vec3 is a direction vector in the local east-north-up frame.
type Vec3 struct {
	X float64 `msgpack:"x"` // east
	Y float64 `msgpack:"y"` // north
	Z float64 `msgpack:"z"` // up
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// SunVector is a unit sun-direction vector for one daylight sample,
// carrying the irradiance observed at that instant.
type SunVector struct {
	Time time.Time `msgpack:"t"`
	Dir  Vec3      `msgpack:"dir"`
	DNI  float64   `msgpack:"dni"`
}

// PanelOrientation fixes a collector by two tilt angles in degrees,
// each in [-90, 90]. Positive EWTilt leans the panel toward the east;
// NSTilt rotates it about the east-west axis.
type PanelOrientation struct {
	EWTilt float64 `json:"ew_tilt" yaml:"ew_tilt"`
	NSTilt float64 `json:"ns_tilt" yaml:"ns_tilt"`
}

// EnergySample is the energy captured during one sample interval, in
// watt-hours. Never negative.
type EnergySample struct {
	Time     time.Time
	EnergyWh float64
}

// OptimizationResult is the outcome of the fixed-tilt grid search. Tilts
// are whole degrees, the resolution of the fine search phase. A zero
// EnergyWh is a valid, degenerate outcome (no daylight samples), not a
// failure.
type OptimizationResult struct {
	EWTilt   int     `json:"ew_tilt"`
	NSTilt   int     `json:"ns_tilt"`
	EnergyWh float64 `json:"energy_wh"`
}
