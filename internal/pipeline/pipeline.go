// Package pipeline runs the full per-site computation: generate (or
// load) a year of sun vectors, integrate tracking and fixed-tilt
// energy, run the tilt optimizer, and roll everything up by month. The
// batch CLI and the REST controller both drive this package.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/skysolve/suntilt/pkg/ephemeris"
	"github.com/skysolve/suntilt/pkg/solar"
	"go.uber.org/zap"
)

// VectorCache is the optional site-year vector store consulted before
// regenerating ephemeris data.
type VectorCache interface {
	Load(site string, year int) ([]solar.SunVector, bool)
	Store(site string, year int, vectors []solar.SunVector) error
}

// Options parameterizes one site-year run.
type Options struct {
	Site          ephemeris.Site
	Year          int
	EfficiencyPct float64
	Custom        *solar.PanelOrientation
}

// MonthlyComparison is one month of energy capture across collector
// modes, in kWh.
type MonthlyComparison struct {
	Month       time.Time `json:"month"`
	TrackingKWh float64   `json:"tracking_kwh"`
	BestKWh     float64   `json:"best_fixed_kwh"`
	CustomKWh   *float64  `json:"custom_fixed_kwh,omitempty"`
}

// Result is the complete outcome of one site-year run. Degenerate marks
// a site-year with no daylight energy at all (for example polar night
// data); everything in it is still valid, just uninformative.
type Result struct {
	Site            string                   `json:"site"`
	Year            int                      `json:"year"`
	DaylightSamples int                      `json:"daylight_samples"`
	Best            solar.OptimizationResult `json:"best"`
	TrackingWh      float64                  `json:"tracking_wh"`
	BestFixedWh     float64                  `json:"best_fixed_wh"`
	CustomWh        *float64                 `json:"custom_fixed_wh,omitempty"`
	BestYieldPct    *float64                 `json:"best_yield_pct,omitempty"`
	CustomYieldPct  *float64                 `json:"custom_yield_pct,omitempty"`
	Degenerate      bool                     `json:"degenerate"`
	Monthly         []MonthlyComparison      `json:"monthly"`
}

// Pipeline executes site-year runs against an optional vector cache.
type Pipeline struct {
	cache  VectorCache
	logger *zap.SugaredLogger
}

// New creates a pipeline. cache may be nil to disable caching.
func New(cache VectorCache, logger *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		cache:  cache,
		logger: logger,
	}
}

// Run executes the full computation for one site-year. Cancelling ctx
// aborts the optimizer's grid search, the only long-running stage.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.EfficiencyPct <= 0 || opts.EfficiencyPct > 100 {
		return nil, fmt.Errorf("%w: panel efficiency %.2f%% outside (0, 100]", solar.ErrInvalidInput, opts.EfficiencyPct)
	}
	if opts.Custom != nil {
		if err := opts.Custom.Validate(); err != nil {
			return nil, err
		}
	}
	efficiency := opts.EfficiencyPct / 100.0

	vectors, err := p.vectors(opts.Site, opts.Year)
	if err != nil {
		return nil, err
	}
	p.logger.Infow("projected sun vectors",
		"site", opts.Site.Name,
		"year", opts.Year,
		"daylight_samples", len(vectors))

	tracking, err := solar.Integrate(vectors, efficiency, nil)
	if err != nil {
		return nil, err
	}
	trackingWh := solar.Total(tracking)

	best, err := solar.Search(ctx, vectors, efficiency)
	if err != nil {
		return nil, err
	}
	bestOrientation := &solar.PanelOrientation{
		EWTilt: float64(best.EWTilt),
		NSTilt: float64(best.NSTilt),
	}
	bestSeries, err := solar.Integrate(vectors, efficiency, bestOrientation)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Site:            opts.Site.Name,
		Year:            opts.Year,
		DaylightSamples: len(vectors),
		Best:            best,
		TrackingWh:      trackingWh,
		BestFixedWh:     best.EnergyWh,
		Degenerate:      trackingWh == 0,
	}

	if ratio, ok := solar.RelativeYield(best.EnergyWh, trackingWh); ok {
		pct := ratio * 100
		result.BestYieldPct = &pct
	}

	var customSeries []solar.EnergySample
	if opts.Custom != nil {
		customSeries, err = solar.Integrate(vectors, efficiency, opts.Custom)
		if err != nil {
			return nil, err
		}
		customWh := solar.Total(customSeries)
		result.CustomWh = &customWh
		if ratio, ok := solar.RelativeYield(customWh, trackingWh); ok {
			pct := ratio * 100
			result.CustomYieldPct = &pct
		}
	}

	result.Monthly = mergeMonthly(solar.Monthly(tracking), solar.Monthly(bestSeries), solar.Monthly(customSeries))
	return result, nil
}

// Vectors returns the projected daylight series for one site-year,
// consulting the cache first. The REST energy endpoint integrates
// arbitrary orientations against this series without a full run.
func (p *Pipeline) Vectors(site ephemeris.Site, year int) ([]solar.SunVector, error) {
	return p.vectors(site, year)
}

// vectors loads the projected series from cache or derives it from a
// freshly generated ephemeris year.
func (p *Pipeline) vectors(site ephemeris.Site, year int) ([]solar.SunVector, error) {
	if p.cache != nil {
		if vectors, ok := p.cache.Load(site.Name, year); ok {
			p.logger.Debugf("vector cache hit for %s/%d", site.Name, year)
			return vectors, nil
		}
	}

	samples, err := ephemeris.Generate(site, year)
	if err != nil {
		return nil, err
	}
	vectors, err := solar.Project(samples)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Store(site.Name, year, vectors); err != nil {
			p.logger.Warnf("could not store vector cache entry for %s/%d: %v", site.Name, year, err)
		}
	}
	return vectors, nil
}

// mergeMonthly aligns the per-mode monthly series. All series come from
// the same timestamp sequence, so months line up index for index; the
// custom series may be absent entirely.
func mergeMonthly(tracking, best, custom []solar.MonthlyEnergy) []MonthlyComparison {
	merged := make([]MonthlyComparison, len(tracking))
	for i, m := range tracking {
		merged[i] = MonthlyComparison{
			Month:       m.Month,
			TrackingKWh: m.KWh,
		}
		if i < len(best) {
			merged[i].BestKWh = best[i].KWh
		}
		if i < len(custom) {
			kwh := custom[i].KWh
			merged[i].CustomKWh = &kwh
		}
	}
	return merged
}
