// Package ledger records publish and schedule outcomes as immutable
// PostRecords. Every attempt produces a new record; nothing here updates
// or deletes one.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/postpilot/postpilot/internal/store"
	"github.com/postpilot/postpilot/pkg/models"
)

var scheduledStatuses = []string{
	models.PostStatusDraft,
	models.PostStatusScheduled,
	models.PostStatusPosted,
	models.PostStatusFailed,
}

var immediateStatuses = []string{
	models.PostStatusPosted,
	models.PostStatusFailed,
}

// RecordParams describes one outcome to persist. AccessToken and PageID are
// mandatory; optional fields left empty are stored as NULL.
type RecordParams struct {
	ImageURL       string
	Caption        string
	AccessToken    string
	PageID         string
	Status         string
	ScheduledAt    *time.Time
	ExternalPostID string
	ErrorReason    string
}

// Ledger validates and persists PostRecords.
type Ledger struct {
	store store.Store
}

// New creates a Ledger backed by the given store.
func New(s store.Store) *Ledger {
	return &Ledger{store: s}
}

// RecordScheduled persists the outcome of a schedule attempt. Status may be
// any of the four post statuses and defaults to SCHEDULED.
func (l *Ledger) RecordScheduled(ctx context.Context, p RecordParams) (*models.PostRecord, error) {
	if p.Status == "" {
		p.Status = models.PostStatusScheduled
	}
	if err := validate(p, scheduledStatuses); err != nil {
		return nil, err
	}
	return l.insert(ctx, p)
}

// RecordImmediate persists the outcome of a post-now attempt. Status is
// restricted to POSTED or FAILED, and ScheduledAt is required — for the
// immediate path it records when the attempt happened.
func (l *Ledger) RecordImmediate(ctx context.Context, p RecordParams) (*models.PostRecord, error) {
	if p.Status == "" {
		p.Status = models.PostStatusPosted
	}
	if err := validate(p, immediateStatuses); err != nil {
		return nil, err
	}
	if p.ScheduledAt == nil || p.ScheduledAt.IsZero() {
		return nil, models.NewValidationError("scheduledAt", "required for immediate posts")
	}
	return l.insert(ctx, p)
}

func (l *Ledger) insert(ctx context.Context, p RecordParams) (*models.PostRecord, error) {
	now := time.Now().UTC()
	record := &models.PostRecord{
		ID:             uuid.New(),
		ImageURL:       optional(p.ImageURL),
		Caption:        optional(strings.TrimSpace(p.Caption)),
		AccessToken:    strings.TrimSpace(p.AccessToken),
		PageID:         strings.TrimSpace(p.PageID),
		Status:         p.Status,
		ScheduledAt:    p.ScheduledAt,
		ExternalPostID: optional(p.ExternalPostID),
		ErrorReason:    optional(p.ErrorReason),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := l.store.CreatePost(ctx, record); err != nil {
		return nil, fmt.Errorf("persisting post record: %w", err)
	}
	return record, nil
}

func validate(p RecordParams, allowed []string) error {
	if strings.TrimSpace(p.AccessToken) == "" {
		return models.NewValidationError("accessToken", "required")
	}
	if strings.TrimSpace(p.PageID) == "" {
		return models.NewValidationError("pageId", "required")
	}
	for _, s := range allowed {
		if p.Status == s {
			if p.Status == models.PostStatusFailed && strings.TrimSpace(p.ErrorReason) == "" {
				return models.NewValidationError("errorReason", "required when status is FAILED")
			}
			return nil
		}
	}
	return models.NewValidationError("status",
		fmt.Sprintf("%q is not allowed here; allowed: %s", p.Status, strings.Join(allowed, ", ")))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
