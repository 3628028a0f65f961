// Package chromem implements the semantic index on chromem-go, a pure
// Go embedded vector database. Each user gets a dedicated collection
// for namespace isolation.
package chromem

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/coachly/coachd/memory"
)

// Index wraps chromem-go as a memory.VectorIndex.
type Index struct {
	db          *chromem.DB
	collections map[string]*chromem.Collection // per-namespace
	mu          sync.RWMutex
}

// New creates an in-memory chromem index.
func New() (*Index, error) {
	return &Index{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
	}, nil
}

// collection returns the namespace's collection, creating it on first
// use. Lookup is double-checked so concurrent upserts for one user
// create the collection only once.
func (s *Index) collection(namespace string) (*chromem.Collection, error) {
	s.mu.RLock()
	col, exists := s.collections[namespace]
	s.mu.RUnlock()
	if exists {
		return col, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if col, exists := s.collections[namespace]; exists {
		return col, nil
	}

	col, err := s.db.CreateCollection(
		fmt.Sprintf("user_%s", namespace),
		nil, // no collection metadata
		nil, // embeddings are provided, no embedding func
	)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	s.collections[namespace] = col
	return col, nil
}

// Upsert stores a record in the namespace. Duplicate IDs overwrite.
func (s *Index) Upsert(ctx context.Context, namespace string, rec memory.VectorRecord) error {
	col, err := s.collection(namespace)
	if err != nil {
		return err
	}

	doc := chromem.Document{
		ID:        rec.ID,
		Content:   rec.Text,
		Embedding: rec.Embedding,
		Metadata: map[string]string{
			"text":    rec.Text,
			"persona": rec.Persona,
			"model":   rec.Model,
			"user":    rec.User,
		},
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Query returns up to topK passages ranked by descending similarity.
// An absent or empty namespace yields an empty result.
func (s *Index) Query(ctx context.Context, namespace string, embedding []float32, topK int) ([]memory.ScoredText, error) {
	col, err := s.collection(namespace)
	if err != nil {
		return nil, err
	}

	// chromem-go requires nResults <= collection size; retry with
	// smaller limits until it fits or the collection turns out empty.
	var results []chromem.Result
	for limit := topK; limit >= 1; limit-- {
		results, err = col.QueryEmbedding(ctx, embedding, limit, nil, nil)
		if err == nil {
			break
		}
		if isInsufficientDocsError(err) {
			if limit == 1 {
				log.Printf("[CHROMEM] Namespace %s is empty", namespace)
				return nil, nil
			}
			continue
		}
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	hits := make([]memory.ScoredText, 0, len(results))
	for _, result := range results {
		hits = append(hits, memory.ScoredText{
			Text:  result.Content,
			Score: result.Similarity,
		})
	}
	return hits, nil
}

// isInsufficientDocsError checks if the error is chromem refusing a
// query larger than the collection.
func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}
