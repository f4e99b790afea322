package processor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psundar/indium-chat/internal/models"
)

func TestNewWithConfigDefaults(t *testing.T) {
	p := NewWithConfig(ProcessorConfig{})
	assert.Equal(t, 1000, p.config.ChunkSize)
	assert.Equal(t, 200, p.config.ChunkOverlap)
	assert.Equal(t, 100, p.config.MinChunkLength)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "one two three", cleanText("  one \n\n two\t three  "))
	assert.Equal(t, "", cleanText("   \n\t  "))
}

func TestProcessShortPage(t *testing.T) {
	p := NewWithConfig(ProcessorConfig{})

	docs, err := p.Process([]models.Document{
		{URL: "https://indium.tech/about", Title: "About", Content: "A short page."},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "https://indium.tech/about_0", docs[0].ID)
	assert.Equal(t, "https://indium.tech/about", docs[0].URL)
	assert.Equal(t, "About", docs[0].Title)
	assert.Equal(t, "A short page.", docs[0].Content)
}

func TestProcessDropsEmptyPages(t *testing.T) {
	p := NewWithConfig(ProcessorConfig{})

	docs, err := p.Process([]models.Document{
		{URL: "https://indium.tech/blank", Content: "   \n  "},
		{URL: "https://indium.tech/real", Content: "Something substantial."},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "https://indium.tech/real", docs[0].URL)
}

func TestProcessChunksLongPage(t *testing.T) {
	p := NewWithConfig(ProcessorConfig{ChunkSize: 120, ChunkOverlap: 20, MinChunkLength: 20})

	var b strings.Builder
	for i := 0; i < 12; i++ {
		b.WriteString("Indium delivers digital engineering services to enterprise clients. ")
	}

	docs, err := p.Process([]models.Document{
		{URL: "https://indium.tech/services", Title: "Services", Content: b.String()},
	})
	require.NoError(t, err)
	require.Greater(t, len(docs), 1)

	for i, doc := range docs {
		assert.Equal(t, "https://indium.tech/services", doc.URL)
		assert.Equal(t, "Services", doc.Title)
		assert.Contains(t, doc.ID, "_")
		assert.NotEmpty(t, doc.Content)
		assert.LessOrEqual(t, len(doc.Content), 120+80, "chunk %d too long", i)
	}
}

func TestSplitIntoSentences(t *testing.T) {
	sentences := splitIntoSentences("First one. Second one! Third one? Trailing fragment")
	require.Len(t, sentences, 4)
	assert.Equal(t, "First one.", sentences[0])
	assert.Equal(t, "Second one!", sentences[1])
	assert.Equal(t, "Third one?", sentences[2])
	assert.Equal(t, "Trailing fragment", sentences[3])
}
