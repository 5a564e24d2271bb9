package services

import (
	"context"
	"fmt"
	"time"

	"takk_server/models"
)

// ChatService is the chat session binder. A conversation exists once its
// match turns mutual and is writable until the end of the match's cycle
// window (plus an optional grace). The binder never stores message bodies:
// the external message store and the socket relay consult it as a write
// gate. Closed sessions stay readable; nothing is deleted here.
type ChatService struct {
	Dynamo    *DynamoService
	Matches   *MatchService
	ChatGrace time.Duration
}

// ChatWindow describes a match's conversation window for the chat UI.
type ChatWindow struct {
	MatchID          string `json:"matchId"`
	OtherParticipant string `json:"otherParticipant"`
	MutualAt         string `json:"mutualAt"`
	ExpiresAt        string `json:"expiresAt"`
	Writable         bool   `json:"writable"`
}

// IsChatWritable reports whether new messages are accepted for matchID at
// the given instant: the match is mutual and now falls inside its window.
func (s *ChatService) IsChatWritable(ctx context.Context, matchID string, now time.Time) (bool, error) {
	match, err := s.Matches.GetMatch(ctx, matchID)
	if err != nil {
		return false, err
	}
	if match.Status != models.MatchStatusMutual {
		return false, nil
	}

	expiresAt, err := s.expiryFor(match)
	if err != nil {
		return false, err
	}
	return now.Before(expiresAt), nil
}

// GetChatWindow returns the window facts the chat UI renders. Once the
// window closes only Writable flips to false; the session data remains
// available so the conversation stays readable.
func (s *ChatService) GetChatWindow(ctx context.Context, matchID, userID string, now time.Time) (*ChatWindow, error) {
	match, err := s.Matches.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	if match.Status != models.MatchStatusMutual {
		return nil, ErrChatNotAvailable
	}

	expiresAt, err := s.expiryFor(match)
	if err != nil {
		return nil, err
	}

	return &ChatWindow{
		MatchID:          match.MatchID,
		OtherParticipant: match.OtherParticipant(userID),
		MutualAt:         match.MutualAt,
		ExpiresAt:        expiresAt.UTC().Format(time.RFC3339),
		Writable:         now.Before(expiresAt),
	}, nil
}

// expiryFor derives the end of a match's writable window from its cycle.
func (s *ChatService) expiryFor(match *models.MatchRecord) (time.Time, error) {
	_, end, err := models.CycleWindow(match.CycleID)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidCycleID, err)
	}
	return end.Add(s.ChatGrace), nil
}
