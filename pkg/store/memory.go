package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/psundar/indium-chat/internal/models"
)

// MemoryStore is an in-process passage index for deployments without a
// database. Documents and embeddings are parallel slices aligned by position.
type MemoryStore struct {
	mu         sync.RWMutex
	docs       []models.Document
	embeddings [][]float32
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add stores documents with their precomputed embeddings.
func (s *MemoryStore) Add(ctx context.Context, embeddings [][]float32, docs []models.Document) error {
	if len(embeddings) != len(docs) {
		return fmt.Errorf("embedding/document count mismatch: %d vs %d", len(embeddings), len(docs))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = append(s.docs, docs...)
	s.embeddings = append(s.embeddings, embeddings...)
	return nil
}

// Query returns the k documents most similar to the embedding.
func (s *MemoryStore) Query(ctx context.Context, embedding []float32, k int) ([]models.Document, error) {
	if k <= 0 {
		k = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		doc   models.Document
		score float64
	}

	results := make([]scored, 0, len(s.docs))
	for i, doc := range s.docs {
		results = append(results, scored{doc: doc, score: cosineSimilarity(embedding, s.embeddings[i])})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if len(results) > k {
		results = results[:k]
	}

	docs := make([]models.Document, len(results))
	for i, r := range results {
		docs[i] = r.doc
	}
	return docs, nil
}

// AllWithEmbeddings enumerates every (document, embedding) pair.
func (s *MemoryStore) AllWithEmbeddings(ctx context.Context) ([]models.EmbeddedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.EmbeddedDocument, len(s.docs))
	for i, doc := range s.docs {
		out[i] = models.EmbeddedDocument{Document: doc, Embedding: s.embeddings[i]}
	}
	return out, nil
}

func (s *MemoryStore) Close() {}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
