package service

import (
	"context"
	"fmt"

	"lexcase-backend/llm"
	"lexcase-backend/models"

	"go.uber.org/zap"
)

// KnowledgeSearch retrieves legal passages relevant to a query. An empty
// result means no relevant passages, not an error.
type KnowledgeSearch interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// chunkSearcher is the slice of the legal chunk repository the search needs
type chunkSearcher interface {
	Search(ctx context.Context, embedding []float32, limit int) ([]models.LegalChunk, error)
}

const defaultSearchLimit = 5

// VectorKnowledgeSearch implements KnowledgeSearch over the pgvector-backed
// legal knowledge base: embed the query, return the closest passages.
type VectorKnowledgeSearch struct {
	embedder llm.Embedder
	chunks   chunkSearcher
	limit    int
	logger   *zap.Logger
}

// NewVectorKnowledgeSearch creates a knowledge search over the legal chunk store
func NewVectorKnowledgeSearch(embedder llm.Embedder, chunks chunkSearcher, logger *zap.Logger) *VectorKnowledgeSearch {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VectorKnowledgeSearch{
		embedder: embedder,
		chunks:   chunks,
		limit:    defaultSearchLimit,
		logger:   logger,
	}
}

// Search embeds the query and returns the closest knowledge-base passages
func (s *VectorKnowledgeSearch) Search(ctx context.Context, query string) ([]string, error) {
	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := s.chunks.Search(ctx, embedding, s.limit)
	if err != nil {
		return nil, fmt.Errorf("search legal chunks: %w", err)
	}

	passages := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		passages = append(passages, chunk.Text)
	}

	s.logger.Debug("knowledge search completed",
		zap.Int("passages", len(passages)))

	return passages, nil
}
