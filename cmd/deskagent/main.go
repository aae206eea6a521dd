package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pgdesk/pgdesk/internal/agent"
	"github.com/pgdesk/pgdesk/internal/config"
	"github.com/pgdesk/pgdesk/internal/llm"
	"github.com/pgdesk/pgdesk/internal/logging"
	"github.com/pgdesk/pgdesk/internal/memory"
	"github.com/pgdesk/pgdesk/internal/models"
	"github.com/pgdesk/pgdesk/internal/search"
	"github.com/pgdesk/pgdesk/internal/ticket"
)

// deskagent is an interactive chat loop against the turn pipeline,
// without the A2A server in between. The loop owns the per-session
// state the pipeline hands back: the active-ticket identifier is
// threaded into the next turn until the user switches identity.
func main() {
	defer logging.Sync()

	cfg := config.NewConfig()

	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	var tickets ticket.Store
	if cfg.SupabaseURL != "" {
		tickets, err = ticket.NewSupabaseStore(ticket.SupabaseConfig{
			URL:    cfg.SupabaseURL,
			APIKey: cfg.SupabaseKey,
		})
		if err != nil {
			log.Fatalf("Failed to create ticket store: %v", err)
		}
	} else {
		tickets = ticket.NewMemoryStore()
	}
	defer tickets.Close()

	var mem memory.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		mem = memory.NewRedisStore(client, time.Duration(cfg.MemoryTTL)*time.Hour)
	} else {
		mem = memory.NewMemoryStore()
	}
	defer mem.Close()

	var index search.Index
	if cfg.QdrantURL != "" {
		embedder, err := llm.NewEmbedder(cfg)
		if err != nil {
			log.Fatalf("Failed to create embedder: %v", err)
		}
		index, err = search.NewQdrantIndex(search.QdrantConfig{
			URL:            cfg.QdrantURL,
			CollectionName: cfg.QdrantCollection,
			APIKey:         cfg.QdrantAPIKey,
		}, embedder)
		if err != nil {
			log.Fatalf("Failed to create search index: %v", err)
		}
	} else {
		fmt.Println("QDRANT_URL not set: knowledge-base search disabled for this session.")
		index = search.NewNoopIndex()
	}
	defer index.Close()

	// Demo data only makes sense against the throwaway in-process
	// stores; real backends keep whatever is already in them.
	if cfg.SupabaseURL == "" && cfg.RedisAddr == "" {
		seedDemoData(tickets, mem)
	}

	core := agent.NewAgent(llmClient, tickets, index, mem, agent.Options{
		SearchTopK:       cfg.SearchTopK,
		HistoryDepth:     cfg.HistoryDepth,
		FragmentMaxChars: cfg.FragmentMaxChars,
		ContextMaxChars:  cfg.ContextMaxChars,
	})

	runChatLoop(core)
}

func runChatLoop(core *agent.Agent) {
	userID := "1"
	sessionID := sessionFor(userID)
	activeTicketID := ""

	fmt.Println("PostgreSQL support desk. Type a message, /user <id> to switch users, /exit to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("[user %s] > ", userID)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/exit" || line == "/quit":
			return
		case strings.HasPrefix(line, "/user "):
			next := strings.TrimSpace(strings.TrimPrefix(line, "/user "))
			if next == "" {
				fmt.Println("Usage: /user <id>")
				continue
			}
			// A user switch is a fresh conversation: new session, no
			// active ticket carried over.
			userID = next
			sessionID = sessionFor(userID)
			activeTicketID = ""
			fmt.Printf("Now chatting as user %s.\n", userID)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		response, active := core.Process(ctx, userID, sessionID, line, activeTicketID)
		cancel()

		activeTicketID = active
		fmt.Println(response)
		if activeTicketID != "" {
			fmt.Printf("(active ticket: %s)\n", activeTicketID)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("Input error: %v", err)
	}
}

func sessionFor(userID string) string {
	return "session_user_" + userID
}

// seedDemoData gives user 1 an existing open ticket and a short prior
// conversation about it, so ticket lookups, ticket history and
// conversation recall can be exercised out of the box.
func seedDemoData(tickets ticket.Store, mem memory.Store) {
	seeder, ok := tickets.(ticket.Seeder)
	if !ok {
		return
	}

	created := time.Now().UTC().Add(-48 * time.Hour)
	seeder.Seed(models.Ticket{
		ID:          "TICKET-T007",
		UserID:      "1",
		Status:      "Open",
		Description: "Client connections are failing with 'FATAL: password authentication failed'.",
		Log:         created.Format(time.RFC3339) + ": Ticket created.",
		CreatedAt:   created,
	})

	ctx := context.Background()
	session := sessionFor("1")
	_ = mem.Append(ctx, session, models.RoleUser, "Hi, my application suddenly can't connect to our PostgreSQL database.")
	_ = mem.Append(ctx, session, models.RoleAssistant, "I'm sorry to hear that. Could you share the exact error message you are seeing?")
	_ = mem.Append(ctx, session, models.RoleUser, "It says FATAL: password authentication failed for user \"app\".")
}
