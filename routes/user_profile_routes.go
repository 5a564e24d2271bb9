package routes

import (
	"takk_server/controllers"
	"takk_server/services"

	"github.com/gorilla/mux"
)

// RegisterUserProfileRoutes sets up routes for profile operations under /api/profile
func RegisterUserProfileRoutes(r *mux.Router, userProfileService *services.UserProfileService) {
	controller := controllers.NewUserProfileController(userProfileService)

	profileRouter := r.PathPrefix("/api/profile").Subrouter()

	profileRouter.HandleFunc("", controller.AddUserProfile).Methods("POST")
	profileRouter.HandleFunc("", controller.GetUserProfile).Methods("GET")
	profileRouter.HandleFunc("", controller.DeleteUserProfile).Methods("DELETE")
	profileRouter.HandleFunc("/consent", controller.SetConsent).Methods("PATCH")
	profileRouter.HandleFunc("/onboarding", controller.CompleteOnboarding).Methods("POST")
}
