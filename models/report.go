package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportVerdict represents the review status of a community report
type ReportVerdict string

const (
	VerdictPending     ReportVerdict = "Pending"
	VerdictVerified    ReportVerdict = "Verified"
	VerdictNotVerified ReportVerdict = "Not Verified"
)

// Report represents a community report about a property or claim
type Report struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"user_id"`
	FullName  string        `json:"full_name"`
	Address   string        `json:"address"`
	Location  string        `json:"location"`
	Message   string        `json:"message"`
	Verdict   ReportVerdict `json:"verdict"`
	Reason    *string       `json:"reason,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
