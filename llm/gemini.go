package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
)

const (
	defaultGenerationModel = "gemini-2.5-pro"
	defaultEmbeddingModel  = "gemini-embedding-001"

	maxEmbedRetries = 3
	initialBackoff  = time.Second
)

// Gemini implements Completer and Embedder on top of the Gemini API client
type Gemini struct {
	client         *genai.Client
	generationName string
	embeddingName  string
}

// GeminiOption configures a Gemini instance
type GeminiOption func(*Gemini)

// WithGenerationModel overrides the generation model name
func WithGenerationModel(name string) GeminiOption {
	return func(g *Gemini) {
		g.generationName = name
	}
}

// WithEmbeddingModel overrides the embedding model name
func WithEmbeddingModel(name string) GeminiOption {
	return func(g *Gemini) {
		g.embeddingName = name
	}
}

// NewGemini wraps an initialized Gemini API client
func NewGemini(client *genai.Client, opts ...GeminiOption) *Gemini {
	g := &Gemini{
		client:         client,
		generationName: defaultGenerationModel,
		embeddingName:  defaultEmbeddingModel,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Complete generates text for the request. A single attempt, no retry: the
// caller decides whether a failed completion is worth paying for twice.
func (g *Gemini) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := g.client.GenerativeModel(g.generationName)
	model.SetTemperature(req.Temperature)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}

	var out strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				out.WriteString(string(text))
			}
		}
	}

	if out.Len() == 0 {
		return "", ErrEmptyCompletion
	}

	return out.String(), nil
}

// EmbedQuery embeds a retrieval query
func (g *Gemini) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return g.embed(ctx, text, genai.TaskTypeRetrievalQuery)
}

// EmbedDocument embeds a knowledge-base passage for indexing
func (g *Gemini) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return g.embed(ctx, text, genai.TaskTypeRetrievalDocument)
}

func (g *Gemini) embed(ctx context.Context, text string, task genai.TaskType) ([]float32, error) {
	model := g.client.EmbeddingModel(g.embeddingName)
	model.TaskType = task

	var lastErr error
	backoff := initialBackoff
	for attempt := 0; attempt < maxEmbedRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}

		resp, err := model.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			lastErr = err
			continue
		}
		if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
			lastErr = ErrEmbeddingFailed
			continue
		}
		return resp.Embedding.Values, nil
	}

	return nil, fmt.Errorf("embed after %d attempts: %w", maxEmbedRetries, lastErr)
}
