package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"takk_server/models"
)

func chatFixture(t *testing.T) (*CycleService, *MatchService, *ChatService) {
	t.Helper()
	f := newFakeDynamo()
	cycles, matches := newTestServices(f)
	chat := &ChatService{Dynamo: cycles.Dynamo, Matches: matches}
	return cycles, matches, chat
}

func makeMutual(t *testing.T, cycles *CycleService, matches *MatchService, a, b, cycleID string) {
	t.Helper()
	seedPair(t, cycles, a, b, cycleID)
	matchID := models.MatchKey(a, b, cycleID)
	if _, err := matches.Accept(context.Background(), matchID, a); err != nil {
		t.Fatalf("%s accept: %v", a, err)
	}
	if _, err := matches.Accept(context.Background(), matchID, b); err != nil {
		t.Fatalf("%s accept: %v", b, err)
	}
}

func TestChatWritableInsideWindow(t *testing.T) {
	cycles, matches, chat := chatFixture(t)
	makeMutual(t, cycles, matches, "alice", "bob", "2025-W40")

	inside := time.Date(2025, time.October, 2, 9, 0, 0, 0, time.UTC)
	writable, err := chat.IsChatWritable(context.Background(), "alice_bob_2025-W40", inside)
	if err != nil {
		t.Fatalf("IsChatWritable: %v", err)
	}
	if !writable {
		t.Error("mutual match inside its cycle window must be writable")
	}

	window, err := chat.GetChatWindow(context.Background(), "alice_bob_2025-W40", "alice", inside)
	if err != nil {
		t.Fatalf("GetChatWindow: %v", err)
	}
	if window.OtherParticipant != "bob" {
		t.Errorf("OtherParticipant = %q", window.OtherParticipant)
	}
	if !window.Writable {
		t.Error("window must report writable")
	}
	if window.ExpiresAt != "2025-10-06T00:00:00Z" {
		t.Errorf("ExpiresAt = %q, want end of the ISO week", window.ExpiresAt)
	}
}

func TestChatClosesAfterWindowButStaysReadable(t *testing.T) {
	cycles, matches, chat := chatFixture(t)
	makeMutual(t, cycles, matches, "alice", "bob", "2025-W40")

	after := time.Date(2025, time.October, 20, 0, 0, 0, 0, time.UTC)
	writable, err := chat.IsChatWritable(context.Background(), "alice_bob_2025-W40", after)
	if err != nil {
		t.Fatalf("IsChatWritable: %v", err)
	}
	if writable {
		t.Error("chat must close once the cycle window ends")
	}

	// The window facts stay retrievable; only Writable flips.
	window, err := chat.GetChatWindow(context.Background(), "alice_bob_2025-W40", "bob", after)
	if err != nil {
		t.Fatalf("GetChatWindow after close: %v", err)
	}
	if window.Writable {
		t.Error("closed window must not be writable")
	}
	if window.MutualAt == "" {
		t.Error("closed window lost its mutualAt")
	}
}

func TestChatGraceExtendsWindow(t *testing.T) {
	cycles, matches, chat := chatFixture(t)
	chat.ChatGrace = 48 * time.Hour
	makeMutual(t, cycles, matches, "alice", "bob", "2025-W40")

	// One day past the bare window end, still inside the grace.
	graced := time.Date(2025, time.October, 7, 0, 0, 0, 0, time.UTC)
	writable, err := chat.IsChatWritable(context.Background(), "alice_bob_2025-W40", graced)
	if err != nil {
		t.Fatalf("IsChatWritable: %v", err)
	}
	if !writable {
		t.Error("grace period must keep the chat writable")
	}
}

func TestChatRequiresMutual(t *testing.T) {
	cycles, _, chat := chatFixture(t)
	seedPair(t, cycles, "alice", "bob", "2025-W40")
	now := time.Date(2025, time.October, 2, 9, 0, 0, 0, time.UTC)

	writable, err := chat.IsChatWritable(context.Background(), "alice_bob_2025-W40", now)
	if err != nil {
		t.Fatalf("IsChatWritable: %v", err)
	}
	if writable {
		t.Error("pending match must not open a chat")
	}

	if _, err := chat.GetChatWindow(context.Background(), "alice_bob_2025-W40", "alice", now); !errors.Is(err, ErrChatNotAvailable) {
		t.Errorf("err = %v, want ErrChatNotAvailable", err)
	}
}

func TestChatWindowAuthorization(t *testing.T) {
	cycles, matches, chat := chatFixture(t)
	makeMutual(t, cycles, matches, "alice", "bob", "2025-W40")
	now := time.Date(2025, time.October, 2, 9, 0, 0, 0, time.UTC)

	if _, err := chat.GetChatWindow(context.Background(), "alice_bob_2025-W40", "mallory", now); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("err = %v, want ErrNotParticipant", err)
	}
	if _, err := chat.GetChatWindow(context.Background(), "nobody_unknown_2025-W40", "nobody", now); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("err = %v, want ErrMatchNotFound", err)
	}
}
