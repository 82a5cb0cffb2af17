package solar

import "gonum.org/v1/gonum/floats"

// Integrate computes the per-interval energy captured by the collector
// for every sun vector. A nil orientation means ideal tracking: the
// collector is always perpendicular to the sun and the incidence cosine
// is 1. With a fixed orientation the cosine is the dot product of the
// sun vector and the panel normal, clipped to [0, 1] — a sun vector
// behind the panel contributes nothing.
//
// Energy per sample is DNI × cosine × efficiency × PanelArea × the
// interval length in hours. Output preserves input order and length, so
// callers can bucket it by arbitrary time spans without reprocessing
// angles.
func Integrate(vectors []SunVector, efficiency float64, orientation *PanelOrientation) ([]EnergySample, error) {
	if err := validateEfficiency(efficiency); err != nil {
		return nil, err
	}

	var normal Vec3
	fixed := orientation != nil
	if fixed {
		if err := validateOrientation(*orientation); err != nil {
			return nil, err
		}
		normal = Normal(orientation.EWTilt, orientation.NSTilt)
	}

	samples := make([]EnergySample, len(vectors))
	for i, v := range vectors {
		cosTheta := 1.0
		if fixed {
			cosTheta = clipCosine(v.Dir.Dot(normal))
		}
		samples[i] = EnergySample{
			Time:     v.Time,
			EnergyWh: v.DNI * cosTheta * efficiency * PanelArea * intervalHours,
		}
	}
	return samples, nil
}

// Total sums an energy series in Wh.
func Total(samples []EnergySample) float64 {
	energies := make([]float64, len(samples))
	for i, s := range samples {
		energies[i] = s.EnergyWh
	}
	return floats.Sum(energies)
}

// RelativeYield returns a fixed-orientation total as a fraction of the
// tracking total. ok is false when the tracking total is zero: the ratio
// is undefined and the caller must treat the comparison as degenerate,
// not as a failure.
func RelativeYield(fixedWh, trackingWh float64) (ratio float64, ok bool) {
	if trackingWh == 0 {
		return 0, false
	}
	return fixedWh / trackingWh, true
}

// clipCosine models self-shading: incidence cosines below zero mean the
// sun is behind the panel.
func clipCosine(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
