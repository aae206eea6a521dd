package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pgdesk/pgdesk/internal/agent"
	"github.com/pgdesk/pgdesk/internal/agents"
	"github.com/pgdesk/pgdesk/internal/config"
	"github.com/pgdesk/pgdesk/internal/llm"
	"github.com/pgdesk/pgdesk/internal/logging"
	"github.com/pgdesk/pgdesk/internal/memory"
	"github.com/pgdesk/pgdesk/internal/search"
	"github.com/pgdesk/pgdesk/internal/ticket"
)

func main() {
	defer logging.Sync()

	cfg := config.NewConfig()
	cfg.AgentURL = fmt.Sprintf("http://%s:%d", cfg.ServerHost, cfg.ServerPort)

	log.Printf("%s configured with port: %d", cfg.AgentName, cfg.ServerPort)

	core, cleanup, err := buildAgent(cfg)
	if err != nil {
		log.Fatalf("Failed to build agent: %v", err)
	}
	defer cleanup()

	supportAgent := agents.NewSupportAgent(cfg, core)

	fmt.Println("Starting support desk A2A server...")
	fmt.Printf("Server will listen on %s:%d\n", cfg.ServerHost, cfg.ServerPort)

	// Create a context that will be canceled on SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := supportAgent.StartServer(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// buildAgent wires the turn pipeline to its collaborators. Drivers
// degrade to in-process implementations when their backend is not
// configured, so the server always comes up.
func buildAgent(cfg *config.Config) (*agent.Agent, func(), error) {
	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	var tickets ticket.Store
	if cfg.SupabaseURL != "" {
		tickets, err = ticket.NewSupabaseStore(ticket.SupabaseConfig{
			URL:    cfg.SupabaseURL,
			APIKey: cfg.SupabaseKey,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create ticket store: %w", err)
		}
	} else {
		logging.Warnf("SUPABASE_URL not set, using in-memory ticket store")
		tickets = ticket.NewMemoryStore()
	}

	var mem memory.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		mem = memory.NewRedisStore(client, time.Duration(cfg.MemoryTTL)*time.Hour)
	} else {
		logging.Warnf("REDIS_ADDR not set, using in-memory conversation store")
		mem = memory.NewMemoryStore()
	}

	var index search.Index
	if cfg.QdrantURL != "" {
		embedder, err := llm.NewEmbedder(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		index, err = search.NewQdrantIndex(search.QdrantConfig{
			URL:            cfg.QdrantURL,
			CollectionName: cfg.QdrantCollection,
			APIKey:         cfg.QdrantAPIKey,
		}, embedder)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create search index: %w", err)
		}
	} else {
		logging.Warnf("QDRANT_URL not set, knowledge-base search disabled")
		index = search.NewNoopIndex()
	}

	core := agent.NewAgent(llmClient, tickets, index, mem, agent.Options{
		SearchTopK:       cfg.SearchTopK,
		HistoryDepth:     cfg.HistoryDepth,
		FragmentMaxChars: cfg.FragmentMaxChars,
		ContextMaxChars:  cfg.ContextMaxChars,
	})

	cleanup := func() {
		_ = tickets.Close()
		_ = mem.Close()
		_ = index.Close()
	}
	return core, cleanup, nil
}
