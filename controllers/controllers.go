package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"takk_server/services"
)

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps service errors onto HTTP statuses. Unrecognised errors
// are treated as transient store failures.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCycleID), errors.Is(err, services.ErrSelfPair):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrNotParticipant):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, services.ErrMatchNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrMatchClosed), errors.Is(err, services.ErrChatNotAvailable):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
