package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/pgdesk/pgdesk/internal/config"
	"github.com/pgdesk/pgdesk/internal/llm"
	"github.com/pgdesk/pgdesk/internal/logging"
	"github.com/pgdesk/pgdesk/internal/models"
	"github.com/pgdesk/pgdesk/internal/search"
)

const upsertBatchSize = 64

// ingest loads knowledge-base articles from a CSV file into the Qdrant
// collection the desk searches. Expected columns: title,url,content
// (header row optional).
func main() {
	defer logging.Sync()

	file := flag.String("file", "", "CSV file with title,url,content columns (required)")
	flag.Parse()

	if *file == "" {
		log.Fatal("-file is required")
	}

	cfg := config.NewConfig()
	if cfg.QdrantURL == "" {
		log.Fatal("QDRANT_URL must be set for ingestion")
	}

	docs, err := readDocuments(*file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *file, err)
	}
	if len(docs) == 0 {
		log.Fatalf("No documents found in %s", *file)
	}
	log.Printf("Loaded %d documents from %s", len(docs), *file)

	embedder, err := llm.NewEmbedder(cfg)
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}

	index, err := search.NewQdrantIndex(search.QdrantConfig{
		URL:            cfg.QdrantURL,
		CollectionName: cfg.QdrantCollection,
		APIKey:         cfg.QdrantAPIKey,
	}, embedder)
	if err != nil {
		log.Fatalf("Failed to create search index: %v", err)
	}
	defer index.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// The collection's vector size has to match the embedding model, so
	// probe the model once before creating anything.
	probe, err := embedder.EmbedQuery(ctx, docs[0].Content)
	if err != nil {
		log.Fatalf("Failed to probe embedding dimension: %v", err)
	}
	if err := index.EnsureCollection(ctx, uint64(len(probe))); err != nil {
		log.Fatalf("Failed to ensure collection %s: %v", cfg.QdrantCollection, err)
	}

	for start := 0; start < len(docs); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := index.Upsert(ctx, docs[start:end]); err != nil {
			log.Fatalf("Failed to upsert batch %d-%d: %v", start, end, err)
		}
		log.Printf("Upserted %d/%d documents", end, len(docs))
	}

	log.Printf("Ingestion complete: %d documents in collection %s", len(docs), cfg.QdrantCollection)
}

// readDocuments parses the CSV file, skipping a header row and any row
// with empty content.
func readDocuments(path string) ([]models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 3

	var docs []models.Document
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		if record[0] == "title" && record[1] == "url" {
			continue
		}
		if record[2] == "" {
			continue
		}
		docs = append(docs, models.Document{
			Title:   record[0],
			URL:     record[1],
			Content: record[2],
		})
	}
	return docs, nil
}
