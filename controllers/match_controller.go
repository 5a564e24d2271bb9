package controllers

import (
	"encoding/json"
	"net/http"

	"takk_server/services"
)

// MatchController handles HTTP requests for match-related actions
type MatchController struct {
	MatchService *services.MatchService
}

// NewMatchController creates a new MatchController instance
func NewMatchController(matchService *services.MatchService) *MatchController {
	return &MatchController{MatchService: matchService}
}

// Accept records the caller's acceptance of a match. The caller identity is
// supplied by the (external) auth layer; only party-to-match authorization
// happens here.
func (mc *MatchController) Accept(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MatchID string `json:"matchId"`
		UserID  string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.MatchID == "" || body.UserID == "" {
		http.Error(w, "matchId and userId are required", http.StatusBadRequest)
		return
	}

	match, err := mc.MatchService.Accept(r.Context(), body.MatchID, body.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

// GetSummary returns a user's aggregate for one cycle.
func (mc *MatchController) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	cycleID := r.URL.Query().Get("cycleId")
	if userID == "" || cycleID == "" {
		http.Error(w, "userId and cycleId are required", http.StatusBadRequest)
		return
	}

	summary, err := mc.MatchService.GetUserCycleSummary(r.Context(), userID, cycleID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GetSummaries returns a user's aggregates across all cycles.
func (mc *MatchController) GetSummaries(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	summaries, err := mc.MatchService.GetUserSummaries(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"summaries": summaries,
	})
}

// GetMatch returns a single match record by id.
func (mc *MatchController) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("matchId")
	if matchID == "" {
		http.Error(w, "matchId is required", http.StatusBadRequest)
		return
	}

	match, err := mc.MatchService.GetMatch(r.Context(), matchID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}
