package solar

import (
	"time"

	"gonum.org/v1/gonum/floats"
)

// MonthlyEnergy is the energy captured during one calendar month, in
// kWh. Month is the first instant of that month in the zone the energy
// series was produced in.
type MonthlyEnergy struct {
	Month time.Time `json:"month"`
	KWh   float64   `json:"kwh"`
}

// Monthly buckets a time-ordered energy series by calendar month and
// converts watt-hours to kilowatt-hours. Months with no samples (for
// example polar night at extreme latitudes) simply do not appear.
func Monthly(samples []EnergySample) []MonthlyEnergy {
	var out []MonthlyEnergy
	var bucket []float64
	var current time.Time

	flush := func() {
		if len(bucket) == 0 {
			return
		}
		out = append(out, MonthlyEnergy{
			Month: current,
			KWh:   floats.Sum(bucket) / 1000.0,
		})
		bucket = bucket[:0]
	}

	for _, s := range samples {
		month := time.Date(s.Time.Year(), s.Time.Month(), 1, 0, 0, 0, 0, s.Time.Location())
		if !month.Equal(current) {
			flush()
			current = month
		}
		bucket = append(bucket, s.EnergyWh)
	}
	flush()

	return out
}
