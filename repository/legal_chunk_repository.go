package repository

import (
	"context"
	"fmt"

	"lexcase-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions is the width of the legal_chunks embedding column.
// Must match the embedding model's output dimensionality.
const EmbeddingDimensions = 3072

// LegalChunkRepository handles database operations for the legal knowledge base
type LegalChunkRepository struct {
	db *pgxpool.Pool
}

// NewLegalChunkRepository creates a new legal chunk repository
func NewLegalChunkRepository(db *pgxpool.Pool) *LegalChunkRepository {
	return &LegalChunkRepository{db: db}
}

// Insert stores one knowledge-base passage with its embedding
func (r *LegalChunkRepository) Insert(ctx context.Context, chunk *models.LegalChunk, embedding []float32) error {
	if len(embedding) != EmbeddingDimensions {
		return fmt.Errorf("embedding must be %d dimensions, got %d", EmbeddingDimensions, len(embedding))
	}

	query := `
		INSERT INTO legal_chunks (
			source_document, chunk_index, chunk_text, citation, jurisdiction, metadata, embedding
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.db.QueryRow(
		ctx, query,
		chunk.SourceDocument,
		chunk.ChunkIndex,
		chunk.Text,
		chunk.Citation,
		chunk.Jurisdiction,
		chunk.Metadata,
		pgvector.NewVector(embedding),
	).Scan(&chunk.ID)

	return err
}

// Search performs a cosine-distance search and returns the closest passages
func (r *LegalChunkRepository) Search(ctx context.Context, embedding []float32, limit int) ([]models.LegalChunk, error) {
	if len(embedding) != EmbeddingDimensions {
		return nil, fmt.Errorf("embedding must be %d dimensions, got %d", EmbeddingDimensions, len(embedding))
	}

	query := `
		SELECT
			id,
			source_document,
			chunk_index,
			chunk_text,
			citation,
			jurisdiction,
			metadata,
			embedding <=> $1 AS distance
		FROM legal_chunks
		ORDER BY embedding <=> $1
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query legal chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.LegalChunk
	for rows.Next() {
		var chunk models.LegalChunk
		err := rows.Scan(
			&chunk.ID,
			&chunk.SourceDocument,
			&chunk.ChunkIndex,
			&chunk.Text,
			&chunk.Citation,
			&chunk.Jurisdiction,
			&chunk.Metadata,
			&chunk.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan legal chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating legal chunks: %w", err)
	}

	return chunks, nil
}

// CountBySourceDocument reports how many chunks a source file already has.
// Used by ingestion to skip files that were processed before.
func (r *LegalChunkRepository) CountBySourceDocument(ctx context.Context, source string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM legal_chunks WHERE source_document = $1", source,
	).Scan(&count)
	return count, err
}
