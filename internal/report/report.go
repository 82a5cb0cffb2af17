// Package report renders completed optimization runs as CSV files, one
// summary file plus one monthly table per site-year.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/skysolve/suntilt/internal/pipeline"
)

// Writer emits CSV reports into a target directory.
type Writer struct {
	dir string
}

// NewWriter creates the output directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// WriteSummary writes summary.csv with one row per result, replacing
// any previous file.
func (w *Writer) WriteSummary(results []*pipeline.Result) error {
	path := filepath.Join(w.dir, "summary.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating summary report: %w", err)
	}
	defer f.Close()

	if err := writeSummaryCSV(f, results); err != nil {
		return fmt.Errorf("writing summary report: %w", err)
	}
	return nil
}

func writeSummaryCSV(out io.Writer, results []*pipeline.Result) error {
	cw := csv.NewWriter(out)
	header := []string{
		"site", "year", "daylight_samples",
		"best_ew_tilt_deg", "best_ns_tilt_deg",
		"tracking_wh", "best_fixed_wh", "best_yield_pct",
		"custom_fixed_wh", "custom_yield_pct", "degenerate",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Site,
			strconv.Itoa(r.Year),
			strconv.Itoa(r.DaylightSamples),
			strconv.Itoa(r.Best.EWTilt),
			strconv.Itoa(r.Best.NSTilt),
			formatWh(r.TrackingWh),
			formatWh(r.BestFixedWh),
			formatOptPct(r.BestYieldPct),
			formatOptWh(r.CustomWh),
			formatOptPct(r.CustomYieldPct),
			strconv.FormatBool(r.Degenerate),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMonthly writes the per-month comparison table for one result as
// <site>-<year>-monthly.csv.
func (w *Writer) WriteMonthly(result *pipeline.Result) error {
	name := fmt.Sprintf("%s-%d-monthly.csv", slug(result.Site), result.Year)
	f, err := os.Create(filepath.Join(w.dir, name))
	if err != nil {
		return fmt.Errorf("creating monthly report: %w", err)
	}
	defer f.Close()

	if err := writeMonthlyCSV(f, result); err != nil {
		return fmt.Errorf("writing monthly report: %w", err)
	}
	return nil
}

func writeMonthlyCSV(out io.Writer, result *pipeline.Result) error {
	cw := csv.NewWriter(out)
	hasCustom := result.CustomWh != nil
	header := []string{"month", "tracking_kwh", "best_fixed_kwh"}
	if hasCustom {
		header = append(header, "custom_fixed_kwh")
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, m := range result.Monthly {
		row := []string{
			m.Month.Format("2006-01"),
			formatKWh(m.TrackingKWh),
			formatKWh(m.BestKWh),
		}
		if hasCustom {
			if m.CustomKWh != nil {
				row = append(row, formatKWh(*m.CustomKWh))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatWh(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatKWh(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func formatOptWh(v *float64) string {
	if v == nil {
		return ""
	}
	return formatWh(*v)
}

func formatOptPct(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

// slug converts a site name into a filesystem-safe filename fragment.
func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
