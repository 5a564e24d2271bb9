package routes

import (
	"takk_server/controllers"
	"takk_server/services"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes sets up routes for match-related operations under /api/match
func RegisterMatchRoutes(r *mux.Router, matchService *services.MatchService) {
	controller := controllers.NewMatchController(matchService)

	matchRouter := r.PathPrefix("/api/match").Subrouter()

	matchRouter.HandleFunc("", controller.GetMatch).Methods("GET")
	matchRouter.HandleFunc("/accept", controller.Accept).Methods("POST")
	matchRouter.HandleFunc("/summary", controller.GetSummary).Methods("GET")
	matchRouter.HandleFunc("/summaries", controller.GetSummaries).Methods("GET")
}
