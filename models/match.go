package models

import (
	"fmt"
	"strings"
	"time"
)

// MatchRecord is one direction of a pairing. Every record co-exists with a
// mirror record carrying the participants in the opposite order; the two are
// always written and updated together so either participant can read the
// pairing through their own key.
type MatchRecord struct {
	MatchID         string `dynamodbav:"matchId" json:"matchId"` // {userId1}_{userId2}_{cycleId}
	CycleID         string `dynamodbav:"cycleId" json:"cycleId"`
	UserID1         string `dynamodbav:"userId1" json:"userId1"`
	UserID2         string `dynamodbav:"userId2" json:"userId2"`
	Status          string `dynamodbav:"status" json:"status"`
	User1Accepted   bool   `dynamodbav:"user1Accepted" json:"user1Accepted"`
	User1AcceptedAt string `dynamodbav:"user1AcceptedAt,omitempty" json:"user1AcceptedAt,omitempty"`
	User2Accepted   bool   `dynamodbav:"user2Accepted" json:"user2Accepted"`
	User2AcceptedAt string `dynamodbav:"user2AcceptedAt,omitempty" json:"user2AcceptedAt,omitempty"`
	MutualAt        string `dynamodbav:"mutualAt,omitempty" json:"mutualAt,omitempty"`
	CreatedAt       string `dynamodbav:"createdAt" json:"createdAt"`
}

// MatchesTable is the DynamoDB table name for match records
const MatchesTable = "Matches"

// MatchKey builds the composite id for the record seen from a's perspective.
func MatchKey(a, b, cycleID string) string {
	return a + "_" + b + "_" + cycleID
}

// ParseMatchKey splits a composite match id into its parts. User ids never
// contain underscores (enforced at eligibility time), so the split is
// unambiguous.
func ParseMatchKey(matchID string) (a, b, cycleID string, err error) {
	parts := strings.SplitN(matchID, "_", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("malformed matchId %q", matchID)
	}
	return parts[0], parts[1], parts[2], nil
}

// MirrorKey returns the id of the reverse-order counterpart record.
func MirrorKey(matchID string) (string, error) {
	a, b, cycleID, err := ParseMatchKey(matchID)
	if err != nil {
		return "", err
	}
	return MatchKey(b, a, cycleID), nil
}

// NewMatchPair builds both mirror records for a fresh pairing in pending state.
func NewMatchPair(a, b, cycleID string, now time.Time) (MatchRecord, MatchRecord) {
	record := MatchRecord{
		MatchID:   MatchKey(a, b, cycleID),
		CycleID:   cycleID,
		UserID1:   a,
		UserID2:   b,
		Status:    MatchStatusPending,
		CreatedAt: now.UTC().Format(time.RFC3339),
	}
	return record, record.Mirror()
}

// Mirror returns the reverse-order view of m: participants swapped and the
// acceptance flags cross-swapped to match.
func (m *MatchRecord) Mirror() MatchRecord {
	return MatchRecord{
		MatchID:         MatchKey(m.UserID2, m.UserID1, m.CycleID),
		CycleID:         m.CycleID,
		UserID1:         m.UserID2,
		UserID2:         m.UserID1,
		Status:          m.Status,
		User1Accepted:   m.User2Accepted,
		User1AcceptedAt: m.User2AcceptedAt,
		User2Accepted:   m.User1Accepted,
		User2AcceptedAt: m.User1AcceptedAt,
		MutualAt:        m.MutualAt,
		CreatedAt:       m.CreatedAt,
	}
}

// HasParticipant reports whether userID is one of the two participants.
func (m *MatchRecord) HasParticipant(userID string) bool {
	return m.UserID1 == userID || m.UserID2 == userID
}

// AcceptedBy reports whether userID has already accepted this match.
func (m *MatchRecord) AcceptedBy(userID string) bool {
	switch userID {
	case m.UserID1:
		return m.User1Accepted
	case m.UserID2:
		return m.User2Accepted
	}
	return false
}

// OtherParticipant returns the participant that is not userID.
func (m *MatchRecord) OtherParticipant(userID string) string {
	if userID == m.UserID1 {
		return m.UserID2
	}
	return m.UserID1
}

// ApplyAccept applies userID's acceptance in place, promoting the record to
// mutual once both sides show accepted. Returns false when the call is an
// idempotent re-accept and nothing changed. Callers must check the terminal
// expired state before applying.
func (m *MatchRecord) ApplyAccept(userID string, now time.Time) bool {
	ts := now.UTC().Format(time.RFC3339)
	changed := false
	switch userID {
	case m.UserID1:
		if !m.User1Accepted {
			m.User1Accepted = true
			m.User1AcceptedAt = ts
			changed = true
		}
	case m.UserID2:
		if !m.User2Accepted {
			m.User2Accepted = true
			m.User2AcceptedAt = ts
			changed = true
		}
	}
	if m.Status == MatchStatusPending && m.User1Accepted && m.User2Accepted {
		m.Status = MatchStatusMutual
		m.MutualAt = ts
		changed = true
	}
	return changed
}
