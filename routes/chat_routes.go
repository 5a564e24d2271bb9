package routes

import (
	"takk_server/controllers"
	"takk_server/services"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up routes for the chat session binder under /api/chat
func RegisterChatRoutes(r *mux.Router, chatService *services.ChatService) {
	controller := controllers.NewChatController(chatService)

	chatRouter := r.PathPrefix("/api/chat").Subrouter()

	chatRouter.HandleFunc("/window", controller.GetWindow).Methods("GET")
	chatRouter.HandleFunc("/writable", controller.IsWritable).Methods("GET")
}
