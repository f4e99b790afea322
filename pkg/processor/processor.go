package processor

import (
	"fmt"
	"strings"

	"github.com/psundar/indium-chat/internal/models"
)

type ProcessorConfig struct {
	ChunkSize      int
	ChunkOverlap   int
	MinChunkLength int
}

// Processor cleans scraped page text and splits it into corpus documents.
// Each chunk becomes its own document carrying the page's url and title, so
// retrieval and citation work at chunk granularity.
type Processor struct {
	config ProcessorConfig
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.ChunkSize == 0 {
		config.ChunkSize = 1000
	}
	if config.ChunkOverlap == 0 {
		config.ChunkOverlap = 200
	}
	if config.MinChunkLength == 0 {
		config.MinChunkLength = 100
	}

	return Processor{
		config: config,
	}
}

// Process splits each page into chunk documents. Pages whose cleaned
// content is empty are dropped.
func (p *Processor) Process(pages []models.Document) ([]models.Document, error) {
	var out []models.Document

	for _, page := range pages {
		content := cleanText(page.Content)
		if content == "" {
			continue
		}

		for i, chunk := range p.splitIntoChunks(content) {
			out = append(out, models.Document{
				ID:      fmt.Sprintf("%s_%d", page.URL, i),
				URL:     page.URL,
				Title:   page.Title,
				Content: chunk,
			})
		}
	}

	return out, nil
}

func cleanText(text string) string {
	// Collapse runs of whitespace
	return strings.TrimSpace(strings.Join(strings.Fields(text), " "))
}

func (p *Processor) splitIntoChunks(text string) []string {
	var chunks []string

	sentences := splitIntoSentences(text)
	currentChunk := strings.Builder{}

	for _, sentence := range sentences {
		if currentChunk.Len()+len(sentence) > p.config.ChunkSize {
			if currentChunk.Len() >= p.config.MinChunkLength {
				chunks = append(chunks, strings.TrimSpace(currentChunk.String()))
			}

			// Start new chunk with overlap from the tail of the previous one
			if p.config.ChunkOverlap > 0 && currentChunk.Len() > p.config.ChunkOverlap {
				tail := currentChunk.String()
				tail = tail[len(tail)-p.config.ChunkOverlap:]
				currentChunk.Reset()
				currentChunk.WriteString(tail)
			} else {
				currentChunk.Reset()
			}
		}

		currentChunk.WriteString(sentence)
		currentChunk.WriteString(" ")
	}

	if currentChunk.Len() >= p.config.MinChunkLength {
		chunks = append(chunks, strings.TrimSpace(currentChunk.String()))
	}

	// Short pages still become a single chunk
	if len(chunks) == 0 && len(text) > 0 {
		chunks = append(chunks, text)
	}

	return chunks
}

func splitIntoSentences(text string) []string {
	sentenceEnders := []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}
	var sentences []string

	current := strings.Builder{}

	for i := 0; i < len(text); i++ {
		current.WriteByte(text[i])

		for _, ender := range sentenceEnders {
			if strings.HasSuffix(current.String(), ender) {
				sentences = append(sentences, strings.TrimSpace(current.String()))
				current.Reset()
				break
			}
		}
	}

	if current.Len() > 0 {
		sentences = append(sentences, strings.TrimSpace(current.String()))
	}

	return sentences
}
