// Package ephemeris generates the solar-position and clear-sky
// irradiance series the collector pipeline consumes: one calendar year
// of apparent zenith, azimuth, and Ineichen-type clear-sky DNI at a
// fixed 10-minute cadence in the site's local time.
package ephemeris

import (
	"fmt"
	"math"
	"time"

	"github.com/skysolve/suntilt/pkg/solar"
	"github.com/soniakeys/meeus/v3/julian"
)

const (
	solarConstant = 1361.0 // W/m², average at the top of the atmosphere

	// linkeTurbidity is the Linke turbidity factor for clean clear-sky
	// air. Typical clear-sky values run 2-6.
	linkeTurbidity = 2.0

	minYear = 1950
	maxYear = 2100
)

// Site is a fixed geographic point for which position series are
// generated.
type Site struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Timezone  string  `json:"timezone"`
}

// Validate checks coordinate ranges and that the timezone resolves.
func (s Site) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: site name is empty", solar.ErrInvalidInput)
	}
	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("%w: latitude %.4f outside [-90, 90]", solar.ErrInvalidInput, s.Latitude)
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("%w: longitude %.4f outside [-180, 180]", solar.ErrInvalidInput, s.Longitude)
	}
	if _, err := s.Location(); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", solar.ErrInvalidInput, s.Timezone, err)
	}
	return nil
}

// Location resolves the site's timezone identifier.
func (s Site) Location() (*time.Location, error) {
	return time.LoadLocation(s.Timezone)
}

// Generate produces the full position-sample series for one calendar
// year at the site: every 10 minutes from Jan 1 00:00 local time up to
// (exclusive) Jan 1 of the following year. DNI is zero whenever the sun
// is at or below the horizon.
func Generate(site Site, year int) ([]solar.PositionSample, error) {
	if err := site.Validate(); err != nil {
		return nil, err
	}
	if year < minYear || year > maxYear {
		return nil, fmt.Errorf("%w: year %d outside [%d, %d]", solar.ErrInvalidInput, year, minYear, maxYear)
	}

	loc, err := site.Location()
	if err != nil {
		return nil, err
	}

	start := time.Date(year, 1, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(1, 0, 0)

	samples := make([]solar.PositionSample, 0, int(end.Sub(start)/solar.SampleInterval))
	for t := start; t.Before(end); t = t.Add(solar.SampleInterval) {
		zenith, azimuth := Position(t, site.Latitude, site.Longitude)
		samples = append(samples, solar.PositionSample{
			Time:           t,
			ApparentZenith: zenith,
			Azimuth:        azimuth,
			DNI:            ClearSkyDNI(t, zenith, site.Altitude),
		})
	}
	return samples, nil
}

// Position returns the sun's apparent zenith and azimuth in degrees at
// the given instant and coordinates. Azimuth is a compass bearing:
// 0 = north, increasing clockwise.
func Position(t time.Time, latitude, longitude float64) (zenithDeg, azimuthDeg float64) {
	utc := t.UTC()
	jd := julian.TimeToJD(utc)
	T := (jd - 2451545.0) / 36525.0 // Julian centuries since J2000.0

	// Solar coordinates (Meeus low-accuracy series).
	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032)) // mean longitude
	M := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))  // mean anomaly
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)       // orbital eccentricity
	C := math.Sin(degToRad(M))*(1.914602-T*(0.004817+T*0.000014)) +
		math.Sin(degToRad(2*M))*(0.019993-T*0.000101) +
		math.Sin(degToRad(3*M))*0.000289
	sunLong := L0 + C
	omega := 125.04 - 1934.136*T
	lambda := sunLong - 0.00569 - 0.00478*math.Sin(degToRad(omega))
	eps0 := 23 + (26+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60)/60
	declRad := math.Asin(math.Sin(degToRad(eps0)) * math.Sin(degToRad(lambda)))

	// Equation of time, minutes.
	y := math.Tan(degToRad(eps0)/2) * math.Tan(degToRad(eps0)/2)
	eqTimeMin := radToDeg(y*math.Sin(degToRad(2*L0))-
		2*e*math.Sin(degToRad(M))+
		4*e*y*math.Sin(degToRad(M))*math.Cos(degToRad(2*L0))-
		0.5*y*y*math.Sin(degToRad(4*L0))-
		1.25*e*e*math.Sin(degToRad(2*M))) * 4

	// Hour angle from true solar time.
	utcMin := float64(utc.Hour()*60+utc.Minute()) + float64(utc.Second())/60.0
	tst := utcMin + 4*longitude + eqTimeMin
	ha := tst/4 - 180
	for ha < -180 {
		ha += 360
	}
	for ha > 180 {
		ha -= 360
	}
	haRad := degToRad(ha)

	latRad := degToRad(latitude)
	cosZen := math.Sin(latRad)*math.Sin(declRad) + math.Cos(latRad)*math.Cos(declRad)*math.Cos(haRad)
	cosZen = clampUnitInterval(cosZen)
	zenRad := math.Acos(cosZen)
	zenithDeg = radToDeg(zenRad)

	// Azimuth from the zenith triangle. Degenerate when the sun is at
	// the exact zenith or the site is at a pole; report north there.
	azDen := math.Cos(latRad) * math.Sin(zenRad)
	if azDen == 0 {
		return zenithDeg, 0
	}
	azCos := clampUnitInterval((math.Sin(declRad) - math.Sin(latRad)*cosZen) / azDen)
	azimuthDeg = radToDeg(math.Acos(azCos))
	if ha > 0 {
		azimuthDeg = 360 - azimuthDeg
	}
	return zenithDeg, azimuthDeg
}

// ClearSkyDNI returns Ineichen-type clear-sky direct-normal irradiance
// in W/m² for the given instant, apparent zenith, and site altitude.
// Zero when the sun is at or below the horizon.
func ClearSkyDNI(t time.Time, zenithDeg, altitude float64) float64 {
	if zenithDeg >= 90 {
		return 0
	}

	n := float64(t.UTC().YearDay())

	// Extraterrestrial radiation, corrected for Earth-Sun distance.
	g0 := solarConstant * (1 + 0.033*math.Cos(degToRad(360.0*(n-3)/365.0)))

	// Kasten-Young air mass.
	am := 1.0 / (math.Cos(degToRad(zenithDeg)) + 0.50572*math.Pow(96.07995-zenithDeg, -1.6364))

	const c = 0.7   // DNI normalization
	const a = 0.027 // atmospheric extinction coefficient
	return g0 * c * math.Exp(-a*am*linkeTurbidity*math.Exp(-altitude/8000.0))
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }
func fixAngle(a float64) float64   { return a - 360.0*math.Floor(a/360.0) }

func clampUnitInterval(x float64) float64 {
	if x < -1 {
		return -1
	}
	if x > 1 {
		return 1
	}
	return x
}
