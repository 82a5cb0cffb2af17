package restserver

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/skysolve/suntilt/internal/pipeline"
	"github.com/skysolve/suntilt/pkg/config"
	"github.com/skysolve/suntilt/pkg/solar"
	"go.uber.org/zap"
)

// testCache hands the pipeline a canned daylight arc so handler tests
// never generate a full ephemeris year.
type testCache struct {
	vectors []solar.SunVector
}

func (c *testCache) Load(site string, year int) ([]solar.SunVector, bool) {
	return c.vectors, c.vectors != nil
}

func (c *testCache) Store(site string, year int, vectors []solar.SunVector) error {
	return nil
}

func testController(t *testing.T) *Controller {
	t.Helper()

	base := time.Date(2024, 6, 21, 6, 0, 0, 0, time.UTC)
	var samples []solar.PositionSample
	for i := 0; i < 36; i++ {
		frac := float64(i) / 35.0
		samples = append(samples, solar.PositionSample{
			Time:           base.Add(time.Duration(i) * solar.SampleInterval),
			ApparentZenith: 30 + 50*math.Abs(2*frac-1),
			Azimuth:        100 + 160*frac,
			DNI:            600 + 300*math.Sin(frac*math.Pi),
		})
	}
	vectors, err := solar.Project(samples)
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}

	logger := zap.NewNop().Sugar()
	p := pipeline.New(&testCache{vectors: vectors}, logger)

	cfg := &config.ConfigData{
		Sites: []config.SiteData{
			{Name: "Ankara", Latitude: 39.93, Longitude: 32.86, Altitude: 938, Timezone: "Etc/GMT-3"},
		},
		HTTP: &config.HTTPData{ListenAddr: "127.0.0.1", Port: 0},
	}

	ctrl, err := NewController(context.Background(), &sync.WaitGroup{}, cfg, p, logger)
	if err != nil {
		t.Fatalf("NewController returned error: %v", err)
	}
	return ctrl
}

func doJSON(t *testing.T, ctrl *Controller, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	ctrl := testController(t)

	rec := doJSON(t, ctrl, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "ok" || resp.Sites != 1 || resp.Version == "" {
		t.Errorf("unexpected health response: %+v", resp)
	}
}

func TestOptimizeEndpoint(t *testing.T) {
	ctrl := testController(t)

	ew := 0.0
	ns := 0.0
	rec := doJSON(t, ctrl, http.MethodPost, "/api/optimize", optimizeRequest{
		Site:          "Ankara",
		Year:          2024,
		EfficiencyPct: 20,
		CustomEWTilt:  &ew,
		CustomNSTilt:  &ns,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result pipeline.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result.Site != "Ankara" || result.Year != 2024 {
		t.Errorf("result identity wrong: %+v", result)
	}
	if result.TrackingWh <= 0 || result.BestFixedWh <= 0 {
		t.Errorf("expected positive totals, got tracking=%.2f best=%.2f", result.TrackingWh, result.BestFixedWh)
	}
	if result.TrackingWh < result.BestFixedWh {
		t.Errorf("tracking %.2f Wh below best fixed %.2f Wh", result.TrackingWh, result.BestFixedWh)
	}
	if result.CustomWh == nil {
		t.Error("custom total missing from response")
	}
}

func TestOptimizeEndpointErrors(t *testing.T) {
	ctrl := testController(t)
	ew := 0.0

	tests := []struct {
		name     string
		req      optimizeRequest
		wantCode int
	}{
		{
			name:     "unknown site",
			req:      optimizeRequest{Site: "Atlantis", Year: 2024, EfficiencyPct: 20},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "efficiency out of range",
			req:      optimizeRequest{Site: "Ankara", Year: 2024, EfficiencyPct: 150},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "half-specified custom tilt",
			req:      optimizeRequest{Site: "Ankara", Year: 2024, EfficiencyPct: 20, CustomEWTilt: &ew},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, ctrl, http.MethodPost, "/api/optimize", tt.req)
			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestEnergyEndpointFixed(t *testing.T) {
	ctrl := testController(t)

	ew := 0.0
	ns := -35.0
	rec := doJSON(t, ctrl, http.MethodPost, "/api/energy", energyRequest{
		Site:          "Ankara",
		Year:          2024,
		EfficiencyPct: 20,
		EWTilt:        &ew,
		NSTilt:        &ns,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp energyResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.TotalWh <= 0 {
		t.Errorf("expected positive total, got %.2f", resp.TotalWh)
	}
	if resp.DaylightSamples != 36 {
		t.Errorf("expected 36 daylight samples, got %d", resp.DaylightSamples)
	}
	if len(resp.Monthly) == 0 {
		t.Error("monthly rollup missing")
	}
}

func TestEnergyEndpointTrackingDominatesFixed(t *testing.T) {
	ctrl := testController(t)

	tracking := doJSON(t, ctrl, http.MethodPost, "/api/energy", energyRequest{
		Site: "Ankara", Year: 2024, EfficiencyPct: 20, Tracking: true,
	})
	if tracking.Code != http.StatusOK {
		t.Fatalf("tracking request failed: %d", tracking.Code)
	}
	ew, ns := 15.0, -20.0
	fixed := doJSON(t, ctrl, http.MethodPost, "/api/energy", energyRequest{
		Site: "Ankara", Year: 2024, EfficiencyPct: 20, EWTilt: &ew, NSTilt: &ns,
	})
	if fixed.Code != http.StatusOK {
		t.Fatalf("fixed request failed: %d", fixed.Code)
	}

	var trackingResp, fixedResp energyResponse
	if err := json.NewDecoder(tracking.Body).Decode(&trackingResp); err != nil {
		t.Fatalf("decoding tracking response: %v", err)
	}
	if err := json.NewDecoder(fixed.Body).Decode(&fixedResp); err != nil {
		t.Fatalf("decoding fixed response: %v", err)
	}
	if trackingResp.TotalWh < fixedResp.TotalWh {
		t.Errorf("tracking %.2f Wh below fixed %.2f Wh", trackingResp.TotalWh, fixedResp.TotalWh)
	}
}

func TestEnergyEndpointErrors(t *testing.T) {
	ctrl := testController(t)
	ew := 200.0
	ns := 0.0

	tests := []struct {
		name     string
		req      energyRequest
		wantCode int
	}{
		{
			name:     "missing tilts in fixed mode",
			req:      energyRequest{Site: "Ankara", Year: 2024, EfficiencyPct: 20},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "tilt out of range",
			req:      energyRequest{Site: "Ankara", Year: 2024, EfficiencyPct: 20, EWTilt: &ew, NSTilt: &ns},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "zero efficiency",
			req:      energyRequest{Site: "Ankara", Year: 2024, Tracking: true},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, ctrl, http.MethodPost, "/api/energy", tt.req)
			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
		})
	}
}
