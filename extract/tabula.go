package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/tabula"

	"lexcase-backend/storage"
)

// TabulaExtractor extracts text from documents held in the document store.
// PDF, DOCX and ODT files go through tabula; plain-text formats are read
// directly.
type TabulaExtractor struct {
	store storage.Storage
}

// NewTabulaExtractor creates an extractor backed by the given document store
func NewTabulaExtractor(store storage.Storage) *TabulaExtractor {
	return &TabulaExtractor{store: store}
}

// Extract downloads the document and extracts its text. Documents that yield
// no text return ErrNoText.
func (e *TabulaExtractor) Extract(ctx context.Context, storagePath string) (string, error) {
	body, err := e.store.Download(ctx, storagePath)
	if err != nil {
		return "", fmt.Errorf("download document: %w", err)
	}
	defer body.Close()

	ext := strings.ToLower(filepath.Ext(storagePath))
	switch ext {
	case ".txt", ".md":
		data, err := io.ReadAll(body)
		if err != nil {
			return "", fmt.Errorf("read document: %w", err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			return "", ErrNoText
		}
		return text, nil

	case ".pdf", ".docx", ".odt":
		return e.extractWithTabula(body, ext)

	default:
		return "", fmt.Errorf("%w: unsupported format %q", ErrNoText, ext)
	}
}

// extractWithTabula spools the document to a temp file since tabula opens
// documents by path.
func (e *TabulaExtractor) extractWithTabula(body io.Reader, ext string) (string, error) {
	tmp, err := os.CreateTemp("", "extract-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("spool document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("spool document: %w", err)
	}

	extractor := tabula.Open(tmp.Name()).JoinParagraphs()
	defer extractor.Close()

	text, _, err := extractor.Text()
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
