package solar

import (
	"math"
	"testing"
	"time"
)

func TestMonthlyBucketsByCalendarMonth(t *testing.T) {
	loc, err := time.LoadLocation("Etc/GMT-3")
	if err != nil {
		t.Fatalf("loading location: %v", err)
	}

	samples := []EnergySample{
		{Time: time.Date(2024, 1, 15, 12, 0, 0, 0, loc), EnergyWh: 400},
		{Time: time.Date(2024, 1, 31, 23, 50, 0, 0, loc), EnergyWh: 600},
		{Time: time.Date(2024, 2, 1, 0, 0, 0, 0, loc), EnergyWh: 250},
		{Time: time.Date(2024, 4, 10, 9, 0, 0, 0, loc), EnergyWh: 1250},
	}

	monthly := Monthly(samples)
	if len(monthly) != 3 {
		t.Fatalf("expected 3 months, got %d", len(monthly))
	}

	expected := []struct {
		month time.Time
		kwh   float64
	}{
		{time.Date(2024, 1, 1, 0, 0, 0, 0, loc), 1.0},
		{time.Date(2024, 2, 1, 0, 0, 0, 0, loc), 0.25},
		{time.Date(2024, 4, 1, 0, 0, 0, 0, loc), 1.25},
	}
	for i, exp := range expected {
		if !monthly[i].Month.Equal(exp.month) {
			t.Errorf("bucket %d: month %v, expected %v", i, monthly[i].Month, exp.month)
		}
		if math.Abs(monthly[i].KWh-exp.kwh) > 1e-9 {
			t.Errorf("bucket %d: %.6f kWh, expected %.6f", i, monthly[i].KWh, exp.kwh)
		}
	}
}

func TestMonthlyEmptySeries(t *testing.T) {
	if monthly := Monthly(nil); len(monthly) != 0 {
		t.Errorf("expected no buckets for empty series, got %d", len(monthly))
	}
}

func TestMonthlyMatchesTotal(t *testing.T) {
	vectors := syntheticDayVectors(t)
	samples, err := Integrate(vectors, 0.2, nil)
	if err != nil {
		t.Fatalf("Integrate returned error: %v", err)
	}

	var monthlySum float64
	for _, m := range Monthly(samples) {
		monthlySum += m.KWh * 1000
	}
	if total := Total(samples); math.Abs(monthlySum-total) > 1e-6 {
		t.Errorf("monthly sum %.6f Wh disagrees with total %.6f Wh", monthlySum, total)
	}
}
