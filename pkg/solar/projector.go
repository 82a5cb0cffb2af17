package solar

import (
	"fmt"
	"math"
)

// Project converts an ordered series of position samples into unit
// sun-direction vectors in the east-north-up frame. Only daylight
// samples (DNI strictly positive) are retained; everything else is
// dropped and contributes no energy in any collector mode. Output
// preserves input order.
func Project(samples []PositionSample) ([]SunVector, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: empty position-sample series", ErrInvalidInput)
	}
	for i := range samples {
		s := &samples[i]
		if s.ApparentZenith < 0 || s.ApparentZenith > 180 {
			return nil, fmt.Errorf("%w: sample %d: zenith %.3f outside [0, 180]", ErrInvalidInput, i, s.ApparentZenith)
		}
		if s.Azimuth < 0 || s.Azimuth > 360 {
			return nil, fmt.Errorf("%w: sample %d: azimuth %.3f outside [0, 360]", ErrInvalidInput, i, s.Azimuth)
		}
		if s.DNI < 0 {
			return nil, fmt.Errorf("%w: sample %d: negative DNI %.3f", ErrInvalidInput, i, s.DNI)
		}
		if i > 0 && s.Time.Before(samples[i-1].Time) {
			return nil, fmt.Errorf("%w: sample %d: timestamp %s precedes previous sample", ErrInvalidInput, i, s.Time)
		}
	}

	vectors := make([]SunVector, 0, len(samples))
	for _, s := range samples {
		if s.DNI <= 0 {
			continue
		}
		zen := degToRad(s.ApparentZenith)
		az := degToRad(s.Azimuth)
		vectors = append(vectors, SunVector{
			Time: s.Time,
			Dir: Vec3{
				X: math.Sin(zen) * math.Sin(az),
				Y: math.Sin(zen) * math.Cos(az),
				Z: math.Cos(zen),
			},
			DNI: s.DNI,
		})
	}
	return vectors, nil
}

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
