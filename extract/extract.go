// Package extract turns stored documents into plain text for summarization
// and retrieval grounding.
package extract

import (
	"context"
	"errors"
)

// ErrNoText indicates a document with no readable text. Callers treat this
// as malformed input, not a transient failure.
var ErrNoText = errors.New("document has no readable text")

// Extractor extracts plain text from a stored document reference
type Extractor interface {
	Extract(ctx context.Context, storagePath string) (string, error)
}
