package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ChatRole represents who authored a chat message
type ChatRole string

const (
	RoleUser ChatRole = "user"
	RoleBot  ChatRole = "bot"
)

// ChatMessage is one side of a chat exchange, stored as JSONB
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// Value implements driver.Valuer for JSONB
func (m ChatMessage) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB
func (m *ChatMessage) Scan(value interface{}) error {
	if value == nil {
		*m = ChatMessage{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*m = ChatMessage{}
		return nil
	}

	if len(bytes) == 0 {
		*m = ChatMessage{}
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// ChatTurn is one persisted query/response exchange. Turns are append-only:
// once written they are never mutated or deleted. A nil CaseID means the turn
// was answered in general/law-only mode.
type ChatTurn struct {
	ID        uuid.UUID   `json:"chat_id"`
	UserID    uuid.UUID   `json:"user_id"`
	CaseID    *uuid.UUID  `json:"case_id,omitempty"`
	Query     ChatMessage `json:"query"`
	Response  ChatMessage `json:"response"`
	Document  *string     `json:"document,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
