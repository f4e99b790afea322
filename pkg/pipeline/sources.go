package pipeline

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/psundar/indium-chat/internal/models"
	"github.com/psundar/indium-chat/internal/types"
)

// SourceAttributor ranks corpus documents against the question and selects
// citation links. Ranking is done over the full index, not just the top-k
// retrieved set: the question is embedded fresh and every (document,
// embedding) pair is scored by cosine similarity.
type SourceAttributor struct {
	embedder  types.Embedder
	store     types.VectorStore
	corpus    []models.Document
	threshold float64
	maxLinks  int
}

func NewSourceAttributor(embedder types.Embedder, store types.VectorStore, corpus []models.Document, threshold float64, maxLinks int) *SourceAttributor {
	if threshold == 0 {
		threshold = 0.6
	}
	if maxLinks <= 0 {
		maxLinks = 3
	}
	return &SourceAttributor{
		embedder:  embedder,
		store:     store,
		corpus:    corpus,
		threshold: threshold,
		maxLinks:  maxLinks,
	}
}

// SelectSources returns at most maxLinks citations whose similarity to the
// question exceeds the threshold, deduplicated by url in descending score
// order. An empty result is valid.
func (a *SourceAttributor) SelectSources(ctx context.Context, question string) ([]models.SourceCitation, error) {
	questionEmbedding, err := a.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question for attribution: %w", err)
	}

	pairs, err := a.store.AllWithEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerating index: %w", err)
	}

	scored := make([]models.ScoredDocument, 0, len(pairs))
	for _, pair := range pairs {
		scored = append(scored, models.ScoredDocument{
			Score:    cosineSim(questionEmbedding, pair.Embedding),
			Document: pair.Document,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	var citations []models.SourceCitation
	seen := make(map[string]bool)
	for _, sd := range scored {
		if len(citations) >= a.maxLinks {
			break
		}
		u := sd.Document.URL
		if sd.Score <= a.threshold || u == "" || seen[u] {
			continue
		}
		seen[u] = true
		citations = append(citations, models.SourceCitation{
			Title: titleForURL(u, a.corpus),
			URL:   u,
		})
	}

	return citations, nil
}

// RenderSources formats citations as a markdown source suffix, e.g.
// "\n\nSource: [Testing](https://indium.tech/testing)". Empty input renders
// nothing.
func RenderSources(citations []models.SourceCitation) string {
	if len(citations) == 0 {
		return ""
	}

	links := make([]string, len(citations))
	for i, c := range citations {
		links[i] = fmt.Sprintf("[%s](%s)", c.Title, c.URL)
	}
	return "\n\nSource: " + strings.Join(links, ", ")
}

// titleForURL resolves a citation title: the corpus document's declared
// title when one exists for this exact url, otherwise a title derived from
// the url path.
func titleForURL(rawURL string, corpus []models.Document) string {
	for _, doc := range corpus {
		if doc.URL == rawURL {
			if doc.Title != "" {
				return doc.Title
			}
			break
		}
	}
	return deriveTitle(rawURL)
}

// deriveTitle builds a title from the last path segment: dashes and
// underscores become spaces, then title case. An empty path means the site
// root.
func deriveTitle(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "Link"
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return "Homepage"
	}

	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]
	last = strings.ReplaceAll(last, "-", " ")
	last = strings.ReplaceAll(last, "_", " ")

	title := titleCase(last)
	if title == "" {
		return "Link"
	}
	return title
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// cosineSim is dot(a,b) / (||a|| * ||b||). Mismatched or zero-norm inputs
// score 0.
func cosineSim(a, b []float32) float64 {
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
