package services

import "errors"

// Errors surfaced to callers. Controllers map these onto HTTP statuses;
// anything not listed here is treated as a transient store failure.
var (
	ErrInvalidCycleID   = errors.New("invalid cycleId")
	ErrSelfPair         = errors.New("cannot pair a user with themselves")
	ErrMatchNotFound    = errors.New("match not found")
	ErrNotParticipant   = errors.New("user is not a participant in this match")
	ErrMatchClosed      = errors.New("this match is no longer available")
	ErrChatNotAvailable = errors.New("chat is not available for this match")
)
