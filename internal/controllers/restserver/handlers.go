package restserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/skysolve/suntilt/internal/constants"
	"github.com/skysolve/suntilt/internal/pipeline"
	"github.com/skysolve/suntilt/pkg/solar"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{controller: ctrl}
}

type optimizeRequest struct {
	Site          string   `json:"site"`
	Year          int      `json:"year"`
	EfficiencyPct float64  `json:"efficiency_pct"`
	CustomEWTilt  *float64 `json:"custom_ew_tilt,omitempty"`
	CustomNSTilt  *float64 `json:"custom_ns_tilt,omitempty"`
}

type energyRequest struct {
	Site          string   `json:"site"`
	Year          int      `json:"year"`
	EfficiencyPct float64  `json:"efficiency_pct"`
	Tracking      bool     `json:"tracking"`
	EWTilt        *float64 `json:"ew_tilt,omitempty"`
	NSTilt        *float64 `json:"ns_tilt,omitempty"`
}

type energyResponse struct {
	Site            string                       `json:"site"`
	Year            int                          `json:"year"`
	DaylightSamples int                          `json:"daylight_samples"`
	TotalWh         float64                      `json:"total_wh"`
	Monthly         []pipeline.MonthlyComparison `json:"monthly"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Sites   int    `json:"sites"`
}

// GetHealth reports service liveness.
func (h *Handlers) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: constants.Version,
		Sites:   len(h.controller.sites),
	})
}

// PostOptimize runs the full site-year pipeline, including the tilt
// grid search, on behalf of the caller. The search aborts if the client
// disconnects.
func (h *Handlers) PostOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	site, ok := h.controller.siteByName(req.Site)
	if !ok {
		http.Error(w, "site not found", http.StatusNotFound)
		return
	}

	var custom *solar.PanelOrientation
	if req.CustomEWTilt != nil || req.CustomNSTilt != nil {
		if req.CustomEWTilt == nil || req.CustomNSTilt == nil {
			http.Error(w, "custom tilt requires both custom_ew_tilt and custom_ns_tilt", http.StatusBadRequest)
			return
		}
		custom = &solar.PanelOrientation{EWTilt: *req.CustomEWTilt, NSTilt: *req.CustomNSTilt}
	}

	result, err := h.controller.pipeline.Run(r.Context(), pipeline.Options{
		Site:          site,
		Year:          req.Year,
		EfficiencyPct: req.EfficiencyPct,
		Custom:        custom,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// PostEnergy integrates one collector mode over a site-year without
// running the optimizer.
func (h *Handlers) PostEnergy(w http.ResponseWriter, r *http.Request) {
	var req energyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.EfficiencyPct <= 0 || req.EfficiencyPct > 100 {
		http.Error(w, "efficiency_pct must be in (0, 100]", http.StatusBadRequest)
		return
	}

	site, ok := h.controller.siteByName(req.Site)
	if !ok {
		http.Error(w, "site not found", http.StatusNotFound)
		return
	}

	var orientation *solar.PanelOrientation
	if !req.Tracking {
		if req.EWTilt == nil || req.NSTilt == nil {
			http.Error(w, "fixed mode requires ew_tilt and ns_tilt (or set tracking)", http.StatusBadRequest)
			return
		}
		orientation = &solar.PanelOrientation{EWTilt: *req.EWTilt, NSTilt: *req.NSTilt}
	}

	vectors, err := h.controller.pipeline.Vectors(site, req.Year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	series, err := solar.Integrate(vectors, req.EfficiencyPct/100.0, orientation)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := energyResponse{
		Site:            site.Name,
		Year:            req.Year,
		DaylightSamples: len(vectors),
		TotalWh:         solar.Total(series),
		Monthly:         monthlySingle(solar.Monthly(series)),
	}
	writeJSON(w, http.StatusOK, resp)
}

// monthlySingle presents a single-mode series in the shared monthly
// shape, with the requested mode occupying the tracking column.
func monthlySingle(series []solar.MonthlyEnergy) []pipeline.MonthlyComparison {
	merged := make([]pipeline.MonthlyComparison, len(series))
	for i, m := range series {
		merged[i] = pipeline.MonthlyComparison{Month: m.Month, TrackingKWh: m.KWh, BestKWh: m.KWh}
	}
	return merged
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
		h.controller.logger.Debugf("request cancelled: %v", err)
	case errors.Is(err, solar.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.controller.logger.Errorf("request failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
