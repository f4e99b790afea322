package store

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/psundar/indium-chat/internal/models"
)

type VectorStoreConfig struct {
	ConnString string
	TableName  string
	VectorDim  int
	BatchSize  int
}

// VectorStore is the pgvector-backed passage index.
type VectorStore struct {
	config VectorStoreConfig
	pool   *pgxpool.Pool
}

func NewWithConfig(config VectorStoreConfig) (*VectorStore, error) {
	if config.TableName == "" {
		config.TableName = "documents"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 768
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	vs := &VectorStore{
		config: config,
		pool:   pool,
	}

	if err := vs.initialize(); err != nil {
		pool.Close()
		return nil, err
	}

	return vs, nil
}

func (vs *VectorStore) initialize() error {
	ctx := context.Background()

	_, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %v", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			url TEXT,
			title TEXT,
			content TEXT NOT NULL,
			embedding vector(%d),
			metadata JSONB
		)`, vs.config.TableName, vs.config.VectorDim)

	_, err = vs.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		vs.config.TableName, vs.config.TableName)

	_, err = vs.pool.Exec(ctx, createIndex)
	if err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}

	return nil
}

// Add stores documents with their precomputed embeddings. Both slices must
// be the same length and aligned by position.
func (vs *VectorStore) Add(ctx context.Context, embeddings [][]float32, docs []models.Document) error {
	if len(embeddings) != len(docs) {
		return fmt.Errorf("embedding/document count mismatch: %d vs %d", len(embeddings), len(docs))
	}

	tx, err := vs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, url, title, content, embedding, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata`,
		vs.config.TableName)

	for i, doc := range docs {
		id := doc.ID
		if id == "" {
			id = fmt.Sprintf("%s_%d", doc.URL, i)
		}

		_, err = tx.Exec(ctx, stmt,
			id,
			doc.URL,
			sanitizeUTF8(doc.Title),
			sanitizeUTF8(doc.Content),
			pgvector.NewVector(embeddings[i]),
			doc.Metadata,
		)
		if err != nil {
			return fmt.Errorf("failed to insert document: %v", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

// Query returns the k documents nearest to the embedding by cosine distance.
func (vs *VectorStore) Query(ctx context.Context, embedding []float32, k int) ([]models.Document, error) {
	if k <= 0 {
		k = 5
	}

	query := fmt.Sprintf(`
		SELECT id, url, title, content, metadata
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`,
		vs.config.TableName)

	rows, err := vs.pool.Query(ctx, query, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %v", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		err := rows.Scan(&doc.ID, &doc.URL, &doc.Title, &doc.Content, &doc.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// AllWithEmbeddings enumerates every (document, embedding) pair in the index.
func (vs *VectorStore) AllWithEmbeddings(ctx context.Context) ([]models.EmbeddedDocument, error) {
	query := fmt.Sprintf(`
		SELECT id, url, title, content, metadata, embedding
		FROM %s`,
		vs.config.TableName)

	rows, err := vs.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate documents: %v", err)
	}
	defer rows.Close()

	var docs []models.EmbeddedDocument
	for rows.Next() {
		var doc models.EmbeddedDocument
		var vec pgvector.Vector
		err := rows.Scan(&doc.ID, &doc.URL, &doc.Title, &doc.Content, &doc.Metadata, &vec)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		doc.Embedding = vec.Slice()
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

func (vs *VectorStore) Close() {
	if vs.pool != nil {
		vs.pool.Close()
	}
}

func sanitizeUTF8(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for i, r := range s {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(s[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		return string(v)
	}
	return s
}
