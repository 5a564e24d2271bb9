package routes

import (
	"takk_server/controllers"
	"takk_server/services"

	"github.com/gorilla/mux"
)

// RegisterCycleRoutes sets up routes for the scheduler-facing batch
// operations under /api/cycle
func RegisterCycleRoutes(r *mux.Router, cycleService *services.CycleService, matchService *services.MatchService, cadence string) {
	controller := controllers.NewCycleController(cycleService, matchService, cadence)

	cycleRouter := r.PathPrefix("/api/cycle").Subrouter()

	cycleRouter.HandleFunc("/run", controller.RunCycle).Methods("POST")
	cycleRouter.HandleFunc("/expire", controller.ExpireSweep).Methods("POST")
	cycleRouter.HandleFunc("/purge", controller.PurgeCycle).Methods("POST")
	cycleRouter.HandleFunc("/report", controller.GetReport).Methods("GET")
}
