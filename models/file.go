package models

import (
	"time"

	"github.com/google/uuid"
)

// File represents a stored document entity
type File struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	CaseID      *uuid.UUID `json:"case_id,omitempty"`
	ChatID      *uuid.UUID `json:"chat_id,omitempty"`
	Filename    string     `json:"filename"`
	MimeType    string     `json:"mime_type"`
	Size        int64      `json:"size"`
	StoragePath string     `json:"storage_path"`
	CreatedAt   time.Time  `json:"created_at"`
}
