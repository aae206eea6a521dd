package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/pgdesk/pgdesk/internal/models"
)

func TestMemoryStoreAppendAndRecent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Append(ctx, "s1", models.RoleUser, "hello"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Append(ctx, "s1", models.RoleAssistant, "hi, how can I help?"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	msgs, err := store.Recent(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[0].Content != "hello" {
		t.Errorf("Unexpected first message %+v", msgs[0])
	}
	if msgs[1].Role != models.RoleAssistant {
		t.Errorf("Unexpected second message %+v", msgs[1])
	}
	if msgs[0].Timestamp.IsZero() {
		t.Errorf("Expected a timestamp on appended messages")
	}
}

func TestMemoryStoreRecentWindow(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_ = store.Append(ctx, "s1", models.RoleUser, fmt.Sprintf("message %d", i))
	}

	msgs, err := store.Recent(ctx, "s1", 3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("Expected window of 3, got %d", len(msgs))
	}
	// Chronological order, most recent at the end.
	if msgs[0].Content != "message 5" || msgs[2].Content != "message 7" {
		t.Errorf("Unexpected window contents %+v", msgs)
	}
}

func TestMemoryStoreSessionsAreIsolated(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.Append(ctx, "s1", models.RoleUser, "for session one")
	_ = store.Append(ctx, "s2", models.RoleUser, "for session two")

	msgs, err := store.Recent(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "for session one" {
		t.Errorf("Session isolation broken: %+v", msgs)
	}
}

func TestMemoryStoreRecentReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.Append(ctx, "s1", models.RoleUser, "original")

	msgs, _ := store.Recent(ctx, "s1", 10)
	msgs[0].Content = "mutated"

	again, _ := store.Recent(ctx, "s1", 10)
	if again[0].Content != "original" {
		t.Errorf("Recent leaked internal state: %+v", again)
	}
}
