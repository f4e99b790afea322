package corpus

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/psundar/indium-chat/internal/models"
)

// rawDocument is the on-disk corpus shape produced by ingestion.
type rawDocument struct {
	Content  string `json:"content"`
	Metadata struct {
		URL   string `json:"url,omitempty"`
		Title string `json:"title,omitempty"`
	} `json:"metadata"`
}

// Load reads the corpus file and validates every document up front, so the
// pipeline can hold plain read-only records instead of checking fields
// defensively at each use site.
func Load(path string) ([]models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file: %w", err)
	}

	var raw []rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing corpus file %s: %w", path, err)
	}

	docs := make([]models.Document, 0, len(raw))
	for i, r := range raw {
		if r.Content == "" {
			return nil, fmt.Errorf("corpus document %d has no content", i)
		}
		docs = append(docs, models.Document{
			ID:      fmt.Sprintf("doc_%d", i),
			URL:     r.Metadata.URL,
			Title:   r.Metadata.Title,
			Content: r.Content,
		})
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("corpus file %s contains no documents", path)
	}

	return docs, nil
}

// Save writes ingested documents in the corpus file shape.
func Save(path string, docs []models.Document) error {
	raw := make([]rawDocument, len(docs))
	for i, doc := range docs {
		raw[i].Content = doc.Content
		raw[i].Metadata.URL = doc.URL
		raw[i].Metadata.Title = doc.Title
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding corpus: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing corpus file: %w", err)
	}
	return nil
}
