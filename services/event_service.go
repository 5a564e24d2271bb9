package services

import (
	"log"
	"time"

	"takk_server/models"

	"github.com/google/uuid"
)

// Broadcaster is the slice of the socket server the event service needs.
type Broadcaster interface {
	BroadcastTo(room string, method string, payload interface{})
}

// EventService emits the core's logical events to the notification
// side-channel. Emission is best-effort: match-state correctness never
// depends on an event being delivered, so nothing here returns an error.
type EventService struct {
	Socket Broadcaster
}

func (es *EventService) MatchCreated(cycleID, userA, userB string) {
	es.emit(models.EventMatchCreated, models.MatchKey(userA, userB, cycleID), cycleID, userA, userB)
}

func (es *EventService) MatchMutual(match *models.MatchRecord) {
	es.emit(models.EventMatchMutual, match.MatchID, match.CycleID, match.UserID1, match.UserID2)
}

// emit broadcasts the event into each participant's own room.
func (es *EventService) emit(eventType, matchID, cycleID string, users ...string) {
	event := models.MatchEvent{
		EventID: uuid.NewString(),
		Type:    eventType,
		MatchID: matchID,
		CycleID: cycleID,
		Users:   users,
		At:      time.Now().UTC().Format(time.RFC3339),
	}

	log.Printf("📣 Event %s for match %s", event.Type, event.MatchID)
	if es.Socket == nil {
		return
	}
	for _, user := range users {
		es.Socket.BroadcastTo(user, event.Type, event)
	}
}
