package models

// MatchEvent is the logical event payload handed to the notification
// side-channel. Delivery is out of scope; match-state correctness never
// depends on an event being received.
type MatchEvent struct {
	EventID string   `json:"eventId"`
	Type    string   `json:"type"` // match_created or match_mutual
	MatchID string   `json:"matchId"`
	CycleID string   `json:"cycleId"`
	Users   []string `json:"users"`
	At      string   `json:"at"`
}
