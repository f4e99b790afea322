package retriever

import (
	"context"
	"fmt"

	"github.com/psundar/indium-chat/internal/models"
	"github.com/psundar/indium-chat/internal/types"
)

// Retriever embeds a question and asks the passage index for the top-k
// matches. Thin adapter; no caching, every question is embedded fresh.
type Retriever struct {
	embedder types.Embedder
	store    types.VectorStore
	topK     int
}

func New(embedder types.Embedder, store types.VectorStore, topK int) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{
		embedder: embedder,
		store:    store,
		topK:     topK,
	}
}

// Retrieve returns the top-k corpus documents for the question.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]models.Document, error) {
	embedding, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	docs, err := r.store.Query(ctx, embedding, r.topK)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	return docs, nil
}
