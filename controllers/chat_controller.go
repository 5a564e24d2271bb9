package controllers

import (
	"net/http"
	"time"

	"takk_server/services"
)

// ChatController exposes the chat session binder to the chat UI and the
// external message store.
type ChatController struct {
	ChatService *services.ChatService
}

// NewChatController creates a new ChatController instance
func NewChatController(chatService *services.ChatService) *ChatController {
	return &ChatController{ChatService: chatService}
}

// GetWindow returns the conversation window for a match.
func (cc *ChatController) GetWindow(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("matchId")
	userID := r.URL.Query().Get("userId")
	if matchID == "" || userID == "" {
		http.Error(w, "matchId and userId are required", http.StatusBadRequest)
		return
	}

	window, err := cc.ChatService.GetChatWindow(r.Context(), matchID, userID, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, window)
}

// IsWritable is the write gate consulted by the external message store.
func (cc *ChatController) IsWritable(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("matchId")
	if matchID == "" {
		http.Error(w, "matchId is required", http.StatusBadRequest)
		return
	}

	writable, err := cc.ChatService.IsChatWritable(r.Context(), matchID, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"writable": writable})
}
