package models

import (
	"github.com/google/uuid"
)

// LegalChunk represents a passage of legal text from the knowledge base
type LegalChunk struct {
	ID             uuid.UUID              `json:"id"`
	SourceDocument string                 `json:"source_document"`
	ChunkIndex     int                    `json:"chunk_index"`
	Text           string                 `json:"text"`
	Citation       *string                `json:"citation,omitempty"`
	Jurisdiction   *string                `json:"jurisdiction,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	Distance       float64                `json:"distance,omitempty"` // Vector similarity distance
}
