package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PostStatusDraft     = "DRAFT"
	PostStatusScheduled = "SCHEDULED"
	PostStatusPosted    = "POSTED"
	PostStatusFailed    = "FAILED"
)

// PostRecord is the persisted outcome of one publish or schedule attempt.
// Records are append-only: every attempt creates a new record, and no core
// code path updates or deletes one. A SCHEDULED record means the platform
// accepted the scheduling call; a FAILED record always carries ErrorReason.
type PostRecord struct {
	ID             uuid.UUID  `db:"id"               json:"id"`
	ImageURL       *string    `db:"image_url"        json:"image_url,omitempty"`
	Caption        *string    `db:"caption"          json:"caption,omitempty"`
	AccessToken    string     `db:"access_token"     json:"-"`
	PageID         string     `db:"page_id"          json:"page_id"`
	Status         string     `db:"status"           json:"status"`
	ScheduledAt    *time.Time `db:"scheduled_at"     json:"scheduled_at,omitempty"`
	ExternalPostID *string    `db:"external_post_id" json:"external_post_id,omitempty"`
	ErrorReason    *string    `db:"error_reason"     json:"error_reason,omitempty"`
	CreatedAt      time.Time  `db:"created_at"       json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"       json:"updated_at"`
}
