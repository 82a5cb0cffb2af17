// Package storage persists optimization runs. Two backends exist:
// SQLite for single-host deployments and Postgres/TimescaleDB when
// results feed a larger warehouse.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/skysolve/suntilt/internal/pipeline"
)

// RunStore persists completed optimization runs.
type RunStore interface {
	SaveRun(ctx context.Context, run *Run) error
	Close() error
}

// Run is one persisted site-year optimization outcome.
type Run struct {
	ID            string
	Site          string
	Year          int
	EfficiencyPct float64
	BestEWTilt    int
	BestNSTilt    int
	TrackingWh    float64
	BestFixedWh   float64
	CustomEWTilt  *float64
	CustomNSTilt  *float64
	CustomWh      *float64
	BestYieldPct  *float64
	Degenerate    bool
	CreatedAt     time.Time
	Monthly       []MonthlyRow
}

// MonthlyRow is one month of a persisted run, energies in kWh.
type MonthlyRow struct {
	Month       string
	TrackingKWh float64
	BestKWh     float64
	CustomKWh   *float64
}

// RunFromResult converts a pipeline result into its storage form,
// assigning a fresh run ID.
func RunFromResult(result *pipeline.Result, efficiencyPct float64, customEW, customNS *float64) *Run {
	run := &Run{
		ID:            uuid.NewString(),
		Site:          result.Site,
		Year:          result.Year,
		EfficiencyPct: efficiencyPct,
		BestEWTilt:    result.Best.EWTilt,
		BestNSTilt:    result.Best.NSTilt,
		TrackingWh:    result.TrackingWh,
		BestFixedWh:   result.BestFixedWh,
		CustomEWTilt:  customEW,
		CustomNSTilt:  customNS,
		CustomWh:      result.CustomWh,
		BestYieldPct:  result.BestYieldPct,
		Degenerate:    result.Degenerate,
		CreatedAt:     time.Now().UTC(),
	}
	for _, m := range result.Monthly {
		run.Monthly = append(run.Monthly, MonthlyRow{
			Month:       m.Month.Format("2006-01"),
			TrackingKWh: m.TrackingKWh,
			BestKWh:     m.BestKWh,
			CustomKWh:   m.CustomKWh,
		})
	}
	return run
}
