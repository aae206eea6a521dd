package llm

import (
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/pgdesk/pgdesk/internal/config"
)

// NewEmbedder creates the embedder used by the search index and the
// ingestion command. Embeddings always go through the OpenAI API: Groq
// does not serve embedding models, so the embedding model is configured
// independently of the chat provider.
func NewEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	model, err := openai.New(
		openai.WithToken(cfg.LLMAPIKey),
		openai.WithEmbeddingModel(cfg.LLMEmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding model: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(model)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return embedder, nil
}
