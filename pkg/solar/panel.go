package solar

import "math"

// Normal returns the collector's unit surface normal for a tilt pair.
// The normal starts vertical (0,0,1), is rotated about the north-south
// (Y) axis by the east-west tilt, then about the east-west (X) axis by
// the north-south tilt. The rotations do not commute and the order is
// fixed; reference outputs depend on it. Normal(0, 0) is exactly
// (0, 0, 1).
//
// Callers must validate tilts to [-90, 90]; behavior outside that range
// is unspecified.
func Normal(ewTiltDeg, nsTiltDeg float64) Vec3 {
	n := Vec3{X: 0, Y: 0, Z: 1}
	n = rotateY(n, degToRad(ewTiltDeg))
	n = rotateX(n, degToRad(nsTiltDeg))
	return n
}

// rotateY rotates v about the north-south (Y) axis.
func rotateY(v Vec3, rad float64) Vec3 {
	sin, cos := math.Sincos(rad)
	return Vec3{
		X: v.X*cos + v.Z*sin,
		Y: v.Y,
		Z: -v.X*sin + v.Z*cos,
	}
}

// rotateX rotates v about the east-west (X) axis.
func rotateX(v Vec3, rad float64) Vec3 {
	sin, cos := math.Sincos(rad)
	return Vec3{
		X: v.X,
		Y: v.Y*cos - v.Z*sin,
		Z: v.Y*sin + v.Z*cos,
	}
}
