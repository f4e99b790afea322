package models

// Document is a corpus passage. Loaded once at startup and treated as
// read-only afterwards; URL and Title may be empty.
type Document struct {
	ID       string
	URL      string
	Title    string
	Content  string
	Metadata map[string]interface{}
}

// EmbeddedDocument pairs a document with its index embedding, as returned
// by full enumeration of the vector store.
type EmbeddedDocument struct {
	Document
	Embedding []float32
}

// ScoredDocument is a document with a per-question similarity score.
// Always derived fresh, never cached across questions.
type ScoredDocument struct {
	Score    float64
	Document Document
}

// SourceCitation is a (title, url) pair attributing an answer to a
// corpus document.
type SourceCitation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ProcessedDocument is the ingestion shape: a scraped page split into
// chunks ready for embedding and storage.
type ProcessedDocument struct {
	Document
	Chunks []string
}
