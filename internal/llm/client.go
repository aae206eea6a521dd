package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/pgdesk/pgdesk/internal/config"
	log "github.com/pgdesk/pgdesk/internal/logging"
)

// groqBaseURL is the OpenAI-compatible endpoint exposed by Groq.
const groqBaseURL = "https://api.groq.com/openai/v1"

// Client defines the interface for the two language-model capability
// classes the turn pipeline depends on: a deterministic structured call
// and a generative synthesis call.
type Client interface {
	// Classify sends a system/user prompt pair to the fast model with JSON
	// output forced and zero temperature, and returns the raw completion.
	Classify(ctx context.Context, system, user string) (string, error)

	// Generate sends a system/user prompt pair to the synthesis model and
	// returns the completion text.
	Generate(ctx context.Context, system, user string) (string, error)
}

// client implements Client using langchain-go with a two-model strategy:
// a fast, small model for structured tasks and a larger model for
// response generation.
type client struct {
	classifier  llms.Model
	synthesizer llms.Model
	maxTokens   int
	timeout     time.Duration
	temperature float64
}

// NewClient creates a new LLM client based on the provided configuration
func NewClient(cfg *config.Config) (Client, error) {
	classifier, err := newModel(cfg, cfg.LLMClassifierModel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize classifier model: %w", err)
	}

	synthesizer, err := newModel(cfg, cfg.LLMSynthesisModel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize synthesis model: %w", err)
	}

	return &client{
		classifier:  classifier,
		synthesizer: synthesizer,
		maxTokens:   cfg.LLMMaxTokens,
		timeout:     time.Duration(cfg.LLMTimeout) * time.Second,
		temperature: cfg.LLMTemperature,
	}, nil
}

// newModel builds a langchain-go model for the configured provider. Groq
// and Azure are both served through the OpenAI-compatible client with a
// base-URL override.
func newModel(cfg *config.Config, model string) (llms.Model, error) {
	switch cfg.LLMProvider {
	case "groq":
		serviceURL := cfg.LLMServiceURL
		if serviceURL == "" {
			serviceURL = groqBaseURL
		}
		return openai.New(
			openai.WithToken(cfg.LLMAPIKey),
			openai.WithModel(model),
			openai.WithBaseURL(serviceURL),
		)
	case "openai":
		return openai.New(
			openai.WithToken(cfg.LLMAPIKey),
			openai.WithModel(model),
		)
	case "azure":
		return openai.New(
			openai.WithToken(cfg.LLMAPIKey),
			openai.WithModel(model),
			openai.WithBaseURL(cfg.LLMServiceURL),
		)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}

// Classify implements Client
func (c *client) Classify(ctx context.Context, system, user string) (string, error) {
	if c.classifier == nil {
		return "", errors.New("LLM client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.classifier.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, system),
			llms.TextParts(llms.ChatMessageTypeHuman, user),
		},
		llms.WithJSONMode(),
		llms.WithTemperature(0),
		llms.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("LLM classification failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("LLM returned no choices")
	}

	log.Debugf("Classifier response: %s", truncateForLogging(resp.Choices[0].Content))
	return resp.Choices[0].Content, nil
}

// Generate implements Client
func (c *client) Generate(ctx context.Context, system, user string) (string, error) {
	if c.synthesizer == nil {
		return "", errors.New("LLM client not initialized")
	}

	log.Debugf("Sending prompt to LLM: %s", truncateForLogging(user))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.synthesizer.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, system),
			llms.TextParts(llms.ChatMessageTypeHuman, user),
		},
		llms.WithTemperature(c.temperature),
		llms.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("LLM generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("LLM returned no choices")
	}

	log.Debugf("Received response from LLM: %s", truncateForLogging(resp.Choices[0].Content))
	return resp.Choices[0].Content, nil
}

// truncateForLogging truncates a string to a reasonable length for logging
func truncateForLogging(s string) string {
	const maxLength = 500
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + "... [truncated]"
}
