package types

import (
	"context"

	"github.com/psundar/indium-chat/internal/models"
)

// Core interfaces. The pipeline depends on these abstractions; pkg/llm and
// pkg/store provide the concrete implementations.

// Embedder converts texts to fixed-dimension vectors. The dimension must
// match the one the corpus was indexed with.
type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore holds (embedding, document) pairs for the corpus.
type VectorStore interface {
	Add(ctx context.Context, embeddings [][]float32, docs []models.Document) error
	Query(ctx context.Context, embedding []float32, k int) ([]models.Document, error)
	AllWithEmbeddings(ctx context.Context) ([]models.EmbeddedDocument, error)
	Close()
}

// Generator wraps the external chat-completion call. Blocking; no retries.
type Generator interface {
	Generate(ctx context.Context, messages []models.Message, temperature float64, maxTokens int) (string, error)
}

// Retriever returns the top-k corpus documents for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]models.Document, error)
}
