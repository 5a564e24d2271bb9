package socket

import (
	"context"
	"log"
	"time"

	gosocketio "github.com/erock530/gosf-socketio"
)

// ChatGate authorizes message relay for a match conversation.
type ChatGate interface {
	IsChatWritable(ctx context.Context, matchID string, now time.Time) (bool, error)
}

// NewSocketServer initializes and returns a new Socket.IO server. Clients
// join their own userId room to receive match events and a matchId room for
// the conversation relay; relay stops once the chat window has closed.
func NewSocketServer(gate ChatGate) *gosocketio.Server {
	server := gosocketio.NewServer(nil)

	// Handle connection events
	server.On(gosocketio.OnConnection, func(c *gosocketio.Channel) {
		log.Println("✅ Socket connected:", c.Id())
	})

	// Handle join events: either a userId room (match events) or a matchId
	// room (conversation).
	server.On("join", func(c *gosocketio.Channel, data map[string]string) {
		if userID := data["userId"]; userID != "" {
			log.Printf("👥 Socket %s joined user room %s\n", c.Id(), userID)
			c.Join(userID)
			return
		}
		matchID := data["matchId"]
		if matchID == "" {
			log.Println("❌ Invalid join request: need userId or matchId")
			return
		}
		log.Printf("👥 Socket %s joined match %s\n", c.Id(), matchID)
		c.Join(matchID)
	})

	// Handle sendMessage events; the relay is gated on the chat window.
	server.On("sendMessage", func(c *gosocketio.Channel, message map[string]interface{}) {
		matchID, _ := message["matchId"].(string)
		if matchID == "" {
			log.Println("❌ Invalid matchId in sendMessage")
			return
		}

		writable, err := gate.IsChatWritable(context.Background(), matchID, time.Now())
		if err != nil {
			log.Printf("❌ Chat gate check failed for match %s: %v\n", matchID, err)
			return
		}
		if !writable {
			log.Printf("🚫 Chat window closed for match %s, dropping message\n", matchID)
			c.Emit("chatClosed", map[string]string{"matchId": matchID})
			return
		}

		server.BroadcastTo(matchID, "newMessage", message)
	})

	// Handle disconnection
	server.On(gosocketio.OnDisconnection, func(c *gosocketio.Channel) {
		log.Println("❌ Socket disconnected:", c.Id())
	})

	return server
}
