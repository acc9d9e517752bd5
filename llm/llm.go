// Package llm abstracts the text-completion and embedding capabilities the
// core depends on. Production wiring uses Gemini; tests substitute fakes.
package llm

import (
	"context"
	"errors"
)

// CompletionRequest describes one completion call
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
}

// Completer generates text from a composed prompt. Implementations may fail
// transiently; the core does not retry completions automatically because a
// retry would duplicate cost and risk inconsistent chat history.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Embedder maps text to a vector for knowledge-base retrieval. Embedding is
// an idempotent read, so implementations retry with bounded backoff.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
}

var (
	ErrEmptyCompletion = errors.New("model returned empty completion")
	ErrEmbeddingFailed = errors.New("failed to generate embedding")
)
