package search

import (
	"context"

	"github.com/pgdesk/pgdesk/internal/models"
)

// Index is the semantic search contract over the knowledge base.
type Index interface {
	// Query returns up to k documents relevant to the text, most relevant
	// first. An empty result is not an error.
	Query(ctx context.Context, text string, k int) ([]models.Document, error)

	// Close releases any resources held by the index.
	Close() error
}
