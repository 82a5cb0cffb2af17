package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/skysolve/suntilt/internal/storage"
)

func testRun() *storage.Run {
	customEW := 10.0
	customNS := -35.0
	customWh := 310_500.0
	yield := 78.4
	customKWh := 28.1
	return &storage.Run{
		ID:            "9f6f2f0a-6f0e-4a3f-9d25-2f24f0f1c001",
		Site:          "Ankara",
		Year:          2024,
		EfficiencyPct: 20,
		BestEWTilt:    5,
		BestNSTilt:    -33,
		TrackingWh:    412_000,
		BestFixedWh:   323_000,
		CustomEWTilt:  &customEW,
		CustomNSTilt:  &customNS,
		CustomWh:      &customWh,
		BestYieldPct:  &yield,
		CreatedAt:     time.Date(2026, 8, 27, 9, 30, 0, 0, time.UTC),
		Monthly: []storage.MonthlyRow{
			{Month: "2024-01", TrackingKWh: 18.2, BestKWh: 15.1},
			{Month: "2024-02", TrackingKWh: 24.9, BestKWh: 21.3, CustomKWh: &customKWh},
		},
	}
}

func TestSaveRunRoundTrip(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer store.Close()

	run := testRun()
	if err := store.SaveRun(context.Background(), run); err != nil {
		t.Fatalf("SaveRun returned error: %v", err)
	}

	var (
		site       string
		year       int
		bestEW     int
		trackingWh float64
		yield      *float64
	)
	row := store.db.QueryRow(
		`SELECT site, year, best_ew_tilt, tracking_wh, best_yield_pct FROM runs WHERE id = ?`, run.ID)
	if err := row.Scan(&site, &year, &bestEW, &trackingWh, &yield); err != nil {
		t.Fatalf("reading run back: %v", err)
	}
	if site != run.Site || year != run.Year || bestEW != run.BestEWTilt || trackingWh != run.TrackingWh {
		t.Errorf("run row mismatch: site=%s year=%d ew=%d tracking=%.1f", site, year, bestEW, trackingWh)
	}
	if yield == nil || *yield != *run.BestYieldPct {
		t.Errorf("yield column mismatch: %v", yield)
	}

	var monthly int
	if err := store.db.QueryRow(
		`SELECT COUNT(*) FROM run_monthly WHERE run_id = ?`, run.ID).Scan(&monthly); err != nil {
		t.Fatalf("counting monthly rows: %v", err)
	}
	if monthly != len(run.Monthly) {
		t.Errorf("expected %d monthly rows, got %d", len(run.Monthly), monthly)
	}

	var customKWh *float64
	if err := store.db.QueryRow(
		`SELECT custom_kwh FROM run_monthly WHERE run_id = ? AND month = ?`, run.ID, "2024-01").Scan(&customKWh); err != nil {
		t.Fatalf("reading monthly custom column: %v", err)
	}
	if customKWh != nil {
		t.Errorf("expected NULL custom column for January, got %v", *customKWh)
	}
}

func TestSaveRunDuplicateID(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer store.Close()

	run := testRun()
	if err := store.SaveRun(context.Background(), run); err != nil {
		t.Fatalf("first SaveRun returned error: %v", err)
	}
	if err := store.SaveRun(context.Background(), run); err == nil {
		t.Error("expected primary key violation on duplicate run ID")
	}

	// The failed transaction must not leave partial monthly rows behind.
	var monthly int
	if err := store.db.QueryRow(
		`SELECT COUNT(*) FROM run_monthly WHERE run_id = ?`, run.ID).Scan(&monthly); err != nil {
		t.Fatalf("counting monthly rows: %v", err)
	}
	if monthly != len(run.Monthly) {
		t.Errorf("expected %d monthly rows after rollback, got %d", len(run.Monthly), monthly)
	}
}
