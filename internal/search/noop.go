package search

import (
	"context"

	"github.com/pgdesk/pgdesk/internal/models"
)

// noopIndex serves deployments without a vector index configured. Every
// query returns no hits, which the turn pipeline already treats as a
// normal outcome.
type noopIndex struct{}

// NewNoopIndex returns an Index that never finds anything.
func NewNoopIndex() Index {
	return noopIndex{}
}

// Query implements Index.
func (noopIndex) Query(ctx context.Context, text string, k int) ([]models.Document, error) {
	return nil, nil
}

// Close implements Index.
func (noopIndex) Close() error {
	return nil
}
