package controllers

import (
	"encoding/json"
	"net/http"

	"takk_server/models"
	"takk_server/services"
)

// UserProfileController handles profile CRUD and the consent toggle.
type UserProfileController struct {
	UserProfileService *services.UserProfileService
}

// NewUserProfileController creates a new UserProfileController instance
func NewUserProfileController(service *services.UserProfileService) *UserProfileController {
	return &UserProfileController{UserProfileService: service}
}

// AddUserProfile creates a profile.
func (upc *UserProfileController) AddUserProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil || profile.UserID == "" {
		http.Error(w, "a profile with userId is required", http.StatusBadRequest)
		return
	}

	created, err := upc.UserProfileService.AddUserProfile(r.Context(), profile)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetUserProfile fetches a profile by userId.
func (upc *UserProfileController) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	profile, err := upc.UserProfileService.GetUserProfile(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// SetConsent toggles participation in future matching cycles.
func (upc *UserProfileController) SetConsent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID          string `json:"userId"`
		Consent         bool   `json:"hasMatchingConsent"`
		MatchingEnabled bool   `json:"matchingEnabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	profile, err := upc.UserProfileService.SetMatchingConsent(r.Context(), body.UserID, body.Consent, body.MatchingEnabled)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// CompleteOnboarding marks onboarding as finished for a user.
func (upc *UserProfileController) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	profile, err := upc.UserProfileService.CompleteOnboarding(r.Context(), body.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// DeleteUserProfile removes a profile.
func (upc *UserProfileController) DeleteUserProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	if err := upc.UserProfileService.DeleteUserProfile(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile deleted"})
}
