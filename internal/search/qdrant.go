package search

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/tmc/langchaingo/embeddings"

	"github.com/pgdesk/pgdesk/internal/models"
)

// QdrantConfig holds Qdrant connection configuration.
type QdrantConfig struct {
	// URL is the Qdrant server address (e.g. "https://example.qdrant.io:6334").
	URL string

	// CollectionName is the name of the knowledge-base collection.
	CollectionName string

	// APIKey is an optional API key for authentication.
	APIKey string
}

// QdrantIndex implements Index backed by a Qdrant collection. Query text
// is embedded before the vector search; document payloads carry the
// title, url and content fields produced at ingestion time.
type QdrantIndex struct {
	client         *qdrant.Client
	embedder       embeddings.Embedder
	collectionName string
}

// NewQdrantIndex creates a Qdrant-backed search index.
func NewQdrantIndex(cfg QdrantConfig, embedder embeddings.Embedder) (*QdrantIndex, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}

	parsedURL := cfg.URL
	if !strings.HasPrefix(parsedURL, "http://") && !strings.HasPrefix(parsedURL, "https://") {
		parsedURL = "https://" + parsedURL
	}

	u, err := url.Parse(parsedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse qdrant url: %w", err)
	}

	host := u.Hostname()
	port := 6334 // default gRPC port
	if u.Port() != "" {
		p, err := strconv.Atoi(u.Port())
		if err != nil {
			return nil, fmt.Errorf("invalid port: %w", err)
		}
		port = p
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &QdrantIndex{
		client:         client,
		embedder:       embedder,
		collectionName: cfg.CollectionName,
	}, nil
}

// Query implements Index.
func (q *QdrantIndex) Query(ctx context.Context, text string, k int) ([]models.Document, error) {
	vector, err := q.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	limit := uint64(k)
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}

	results := make([]models.Document, 0, len(points))
	for _, point := range points {
		var doc models.Document
		for key, val := range point.Payload {
			switch key {
			case "title":
				doc.Title = val.GetStringValue()
			case "url":
				doc.URL = val.GetStringValue()
			case "content":
				doc.Content = val.GetStringValue()
			}
		}
		if doc.Content == "" {
			continue
		}
		results = append(results, doc)
	}

	return results, nil
}

// EnsureCollection creates the collection if it does not exist yet. The
// vector size must match the embedding model's output dimension.
func (q *QdrantIndex) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// Upsert embeds the documents and writes them into the collection. Used
// by the ingestion command.
func (q *QdrantIndex) Upsert(ctx context.Context, docs []models.Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}

	vectors, err := q.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed documents: %w", err)
	}

	points := make([]*qdrant.PointStruct, len(docs))
	for i, doc := range docs {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuid.NewString()),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"title":   doc.Title,
				"url":     doc.URL,
				"content": doc.Content,
			}),
		}
	}

	_, err = q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

// Close implements Index.
func (q *QdrantIndex) Close() error {
	return q.client.Close()
}

// Compile-time check that QdrantIndex implements Index.
var _ Index = (*QdrantIndex)(nil)
