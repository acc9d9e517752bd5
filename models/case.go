package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CaseStatus represents the lifecycle status of a case
type CaseStatus string

const (
	CaseStatusOpen     CaseStatus = "Open"
	CaseStatusResolved CaseStatus = "Resolved"
	CaseStatusAborted  CaseStatus = "Aborted"
)

// Terminal reports whether no further status transitions are allowed.
func (s CaseStatus) Terminal() bool {
	return s == CaseStatusResolved || s == CaseStatusAborted
}

// EntityType represents the kind of party named in a case document
type EntityType string

const (
	EntityTypePerson       EntityType = "person"
	EntityTypeOrganization EntityType = "organization"
)

// Entity represents a party identified in the case documents
type Entity struct {
	Name       string     `json:"name"`
	EntityType EntityType `json:"entity_type"`
	Valid      bool       `json:"valid"`
}

// Asset represents property or holdings identified in the case documents
type Asset struct {
	Name        string  `json:"name"`
	Location    *string `json:"location,omitempty"`
	AssetType   string  `json:"asset_type"`
	NetWorth    *string `json:"net_worth,omitempty"`
	Coordinates *string `json:"coordinates,omitempty"`
}

// EntityList is a JSONB column of entities
type EntityList []Entity

// Value implements driver.Valuer for JSONB
func (e EntityList) Value() (driver.Value, error) {
	return json.Marshal(e)
}

// Scan implements sql.Scanner for JSONB
func (e *EntityList) Scan(value interface{}) error {
	if value == nil {
		*e = make(EntityList, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*e = make(EntityList, 0)
		return nil
	}

	if len(bytes) == 0 {
		*e = make(EntityList, 0)
		return nil
	}

	return json.Unmarshal(bytes, e)
}

// AssetList is a JSONB column of assets
type AssetList []Asset

// Value implements driver.Valuer for JSONB
func (a AssetList) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSONB
func (a *AssetList) Scan(value interface{}) error {
	if value == nil {
		*a = make(AssetList, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*a = make(AssetList, 0)
		return nil
	}

	if len(bytes) == 0 {
		*a = make(AssetList, 0)
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Case represents a user-initiated legal matter. Each case owns exactly one
// CaseSummary, created together with the case and never deleted on its own.
type Case struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Title     string     `json:"title"`
	Status    CaseStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CaseSummary is the structured, model-derived analysis of a case's
// documents. Document text fields are written once at creation; remarks is
// the only field that changes afterwards (on resolve/abort).
type CaseSummary struct {
	ID                  uuid.UUID  `json:"id"`
	CaseID              uuid.UUID  `json:"case_id"`
	Valid               bool       `json:"valid"`
	Legitimate          bool       `json:"legitimate"`
	CaseType            string     `json:"case_type"`
	Entities            EntityList `json:"entities"`
	Assets              AssetList  `json:"assets"`
	Document            string     `json:"document"`
	DocumentContent     string     `json:"document_content"`
	SupportingDocuments []string   `json:"supporting_documents"`
	SupportingContent   string     `json:"supporting_document_content"`
	Summary             string     `json:"summary"`
	Recommendations     []string   `json:"recommendations"`
	References          []string   `json:"references,omitempty"`
	Remarks             *string    `json:"remarks,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}
