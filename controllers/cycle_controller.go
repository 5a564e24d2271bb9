package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"takk_server/models"
	"takk_server/services"
)

// CycleController handles the scheduler-facing batch operations.
type CycleController struct {
	CycleService *services.CycleService
	MatchService *services.MatchService
	Cadence      string
}

// NewCycleController creates a new CycleController instance
func NewCycleController(cycleService *services.CycleService, matchService *services.MatchService, cadence string) *CycleController {
	return &CycleController{CycleService: cycleService, MatchService: matchService, Cadence: cadence}
}

// RunCycle triggers one matching cycle. The scheduler normally passes the
// cycleId; when omitted it is derived from the current time and cadence.
func (cc *CycleController) RunCycle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CycleID string `json:"cycleId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err.Error() != "EOF" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.CycleID == "" {
		body.CycleID = models.CycleIDForTime(time.Now(), cc.Cadence)
	}

	stats, err := cc.CycleService.RunCycle(r.Context(), body.CycleID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ExpireSweep transitions every overdue pending match to expired.
func (cc *CycleController) ExpireSweep(w http.ResponseWriter, r *http.Request) {
	expired, err := cc.MatchService.ExpirePending(r.Context(), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"expired": expired})
}

// PurgeCycle removes a whole cycle's records. Explicit cleanup tooling only.
func (cc *CycleController) PurgeCycle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CycleID string `json:"cycleId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.CycleID == "" {
		http.Error(w, "cycleId is required", http.StatusBadRequest)
		return
	}

	purged, err := cc.CycleService.PurgeCycle(r.Context(), body.CycleID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"purged": purged})
}

// GetReport returns a presigned URL for a past cycle's audit report.
func (cc *CycleController) GetReport(w http.ResponseWriter, r *http.Request) {
	cycleID := r.URL.Query().Get("cycleId")
	if cycleID == "" {
		http.Error(w, "cycleId is required", http.StatusBadRequest)
		return
	}
	if cc.CycleService.Reports == nil {
		http.Error(w, "cycle reports are not configured", http.StatusNotFound)
		return
	}

	url, err := cc.CycleService.Reports.GenerateReportURL(r.Context(), cycleID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
