package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"trpc.group/trpc-go/trpc-a2a-go/protocol"
	"trpc.group/trpc-go/trpc-a2a-go/server"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"

	"github.com/pgdesk/pgdesk/internal/agent"
	"github.com/pgdesk/pgdesk/internal/common"
	"github.com/pgdesk/pgdesk/internal/config"
	log "github.com/pgdesk/pgdesk/internal/logging"
	"github.com/pgdesk/pgdesk/internal/models"
)

// SupportAgent exposes the turn pipeline over the A2A protocol. It
// implements the TaskProcessor interface from trpc-a2a-go: each task
// carries one TurnRequest and completes with one TurnResult.
type SupportAgent struct {
	config *config.Config
	agent  *agent.Agent
}

// NewSupportAgent wraps a turn pipeline for serving.
func NewSupportAgent(cfg *config.Config, a *agent.Agent) *SupportAgent {
	return &SupportAgent{
		config: cfg,
		agent:  a,
	}
}

// Process implements the TaskProcessor interface from trpc-a2a-go
func (s *SupportAgent) Process(ctx context.Context, taskID string, message protocol.Message, handle taskmanager.TaskHandle) error {
	log.Infof("Received task with ID: %s", taskID)

	if err := handle.UpdateStatus(protocol.TaskState("processing"), nil); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	req, err := extractTurnRequest(message)
	if err != nil {
		log.Errorf("Failed to extract turn request: %v", err)
		return fmt.Errorf("failed to extract turn request: %w", err)
	}

	log.Infof("Processing turn for user %s in session %s", req.UserID, req.SessionID)

	// The pipeline itself never fails; collaborator errors degrade the
	// response instead of failing the task.
	response, activeTicketID := s.agent.Process(ctx, req.UserID, req.SessionID, req.Message, req.ActiveTicketID)

	result := models.TurnResult{
		Response:       response,
		ActiveTicketID: activeTicketID,
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal turn result: %w", err)
	}

	responseMsg := &protocol.Message{
		Parts: []protocol.Part{protocol.NewTextPart(string(resultJSON))},
	}
	if err := handle.UpdateStatus(protocol.TaskState("completed"), responseMsg); err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	log.Infof("Task %s completed successfully", taskID)
	return nil
}

// extractTurnRequest pulls a TurnRequest out of the message parts. The
// payload is expected as JSON inside a text part.
func extractTurnRequest(message protocol.Message) (*models.TurnRequest, error) {
	for _, part := range message.Parts {
		textPart, ok := part.(*protocol.TextPart)
		if !ok || textPart == nil || textPart.Text == "" {
			continue
		}

		var req models.TurnRequest
		if err := json.Unmarshal([]byte(textPart.Text), &req); err != nil {
			continue
		}
		if req.UserID != "" && req.SessionID != "" && req.Message != "" {
			return &req, nil
		}
	}
	return nil, fmt.Errorf("no valid turn request found in message")
}

// StartServer serves the agent over A2A until the context is canceled.
func (s *SupportAgent) StartServer(ctx context.Context) error {
	srv, err := common.SetupServer(common.SetupServerOptions{
		AgentName:    s.config.AgentName,
		AgentVersion: s.config.AgentVersion,
		AgentURL:     s.config.AgentURL,
		AuthType:     s.config.AuthType,
		JWTSecret:    s.config.JWTSecret,
		APIKey:       s.config.APIKey,
		Processor:    s,
		Skills: []server.AgentSkill{
			{
				ID:          "support-turn",
				Name:        "Support conversation turn",
				Description: common.StringPtr("Answers PostgreSQL support questions grounded in tickets, conversation memory and the knowledge base"),
				InputModes:  []string{"text"},
				OutputModes: []string{"text"},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to setup server: %w", err)
	}

	return common.StartServer(ctx, srv, s.config.ServerHost, s.config.ServerPort)
}
