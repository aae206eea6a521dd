package ticket

import (
	"context"
	"strings"
	"testing"

	"github.com/pgdesk/pgdesk/internal/models"
)

func TestMemoryStoreCreate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.Create(ctx, "1", "Connections are refused after restart.")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !strings.HasPrefix(id, "TICKET-") || len(id) != len("TICKET-")+8 {
		t.Errorf("Unexpected ticket ID format: %q", id)
	}
	if id != strings.ToUpper(id) {
		t.Errorf("Ticket ID should be uppercase: %q", id)
	}

	created, err := store.Get(ctx, id)
	if err != nil || created == nil {
		t.Fatalf("Get(%s) = %v, %v", id, created, err)
	}
	if created.Status != "Open" {
		t.Errorf("New tickets must be Open, got %q", created.Status)
	}
	if created.UserID != "1" {
		t.Errorf("Unexpected owner %q", created.UserID)
	}
	if !strings.HasSuffix(created.Log, ": Ticket created.") {
		t.Errorf("Unexpected creation log line %q", created.Log)
	}
}

func TestMemoryStoreGetMiss(t *testing.T) {
	store := NewMemoryStore()

	got, err := store.Get(context.Background(), "TICKET-MISSING0")
	if err != nil {
		t.Fatalf("A miss must not be an error, got %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for unknown ticket, got %+v", got)
	}
}

func TestMemoryStoreListNewestFirstPerUser(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, _ := store.Create(ctx, "1", "first issue")
	_, _ = store.Create(ctx, "2", "someone else's issue")
	second, _ := store.Create(ctx, "1", "second issue")

	list, err := store.List(ctx, "1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 tickets for user 1, got %d", len(list))
	}
	if list[0].ID != second || list[1].ID != first {
		t.Errorf("Expected newest-first order [%s %s], got [%s %s]", second, first, list[0].ID, list[1].ID)
	}
}

func TestMemoryStoreSeed(t *testing.T) {
	store := NewMemoryStore()

	seeder, ok := store.(Seeder)
	if !ok {
		t.Fatalf("memory store should support seeding")
	}
	seeder.Seed(models.Ticket{ID: "TICKET-T007", UserID: "1", Status: "Open", Description: "seeded"})

	got, err := store.Get(context.Background(), "TICKET-T007")
	if err != nil || got == nil {
		t.Fatalf("Expected seeded ticket, got %v, %v", got, err)
	}
	if got.Description != "seeded" {
		t.Errorf("Unexpected description %q", got.Description)
	}
}
