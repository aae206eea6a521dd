package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"trpc.group/trpc-go/trpc-a2a-go/protocol"

	"github.com/pgdesk/pgdesk/internal/common"
	"github.com/pgdesk/pgdesk/internal/config"
	"github.com/pgdesk/pgdesk/internal/models"
)

// deskclient sends one conversation turn to a running desk server and
// prints the resulting response plus the outgoing active-ticket ID, so
// a shell loop can thread it back in via -active.
func main() {
	userID := flag.String("user", "1", "user identifier")
	sessionID := flag.String("session", "", "session identifier (defaults to session_user_<user>)")
	message := flag.String("message", "", "the user's message (required)")
	active := flag.String("active", "", "active ticket ID carried over from the previous turn")
	flag.Parse()

	if *message == "" {
		log.Fatal("-message is required")
	}
	if *sessionID == "" {
		*sessionID = "session_user_" + *userID
	}

	cfg := config.NewConfig()

	a2aClient, err := common.SetupA2AClient(cfg, cfg.AgentURL)
	if err != nil {
		log.Fatalf("Failed to create A2A client: %v", err)
	}

	req := models.TurnRequest{
		UserID:         *userID,
		SessionID:      *sessionID,
		Message:        *message,
		ActiveTicketID: *active,
	}
	reqJSON, err := json.Marshal(req)
	if err != nil {
		log.Fatalf("Failed to marshal turn request: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	log.Printf("Sending turn to %s", cfg.AgentURL)
	resp, err := a2aClient.SendTasks(ctx, protocol.SendTaskParams{
		Message: protocol.Message{
			Parts: []protocol.Part{protocol.NewTextPart(string(reqJSON))},
		},
	})
	if err != nil {
		log.Fatalf("Failed to send turn: %v", err)
	}

	// Poll until the task settles.
	for {
		time.Sleep(500 * time.Millisecond)

		task, err := a2aClient.GetTasks(ctx, protocol.TaskQueryParams{ID: resp.ID})
		if err != nil {
			log.Fatalf("Failed to get task %s: %v", resp.ID, err)
		}

		switch task.Status.State {
		case "completed":
			result, err := extractTurnResult(task.Status.Message)
			if err != nil {
				log.Fatalf("Task %s completed without a readable result: %v", resp.ID, err)
			}
			fmt.Println(result.Response)
			if result.ActiveTicketID != "" {
				fmt.Printf("active ticket: %s\n", result.ActiveTicketID)
			}
			return
		case "failed", "canceled":
			log.Fatalf("Task %s ended in state %s", resp.ID, task.Status.State)
		default:
			log.Printf("Task status: %s", task.Status.State)
		}
	}
}

func extractTurnResult(message *protocol.Message) (*models.TurnResult, error) {
	if message == nil {
		return nil, fmt.Errorf("task carries no status message")
	}
	for _, part := range message.Parts {
		textPart, ok := part.(*protocol.TextPart)
		if !ok || textPart.Text == "" {
			continue
		}
		var result models.TurnResult
		if err := json.Unmarshal([]byte(textPart.Text), &result); err == nil && result.Response != "" {
			return &result, nil
		}
	}
	return nil, fmt.Errorf("no turn result found in message parts")
}
