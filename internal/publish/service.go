// Package publish decides how a chosen candidate reaches Facebook: the
// text-vs-photo call shape, immediate vs scheduled timing, and how the
// outcome is reconciled with the post ledger.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/postpilot/postpilot/internal/facebook"
	"github.com/postpilot/postpilot/internal/ledger"
	"github.com/postpilot/postpilot/pkg/models"
)

// ErrRecordFailed marks a publish that succeeded externally but whose
// outcome could not be persisted.
var ErrRecordFailed = errors.New("post record write failed")

// Request is the normalized shape a handler passes to the dispatcher.
// A non-empty ImageURL selects the photo call shape on both paths.
type Request struct {
	PageID      string
	AccessToken string
	Message     string
	ImageURL    string
}

// Result pairs the persisted record with what the platform reported.
type Result struct {
	Record    *models.PostRecord
	Permalink string
}

// Service is the publish dispatcher.
type Service struct {
	fb      facebook.Client
	ledger  *ledger.Ledger
	minLead time.Duration
	now     func() time.Time
}

// NewService creates a dispatcher. minLead is the platform's minimum gap
// between now and a scheduled publish time.
func NewService(fb facebook.Client, l *ledger.Ledger, minLead time.Duration) *Service {
	return &Service{
		fb:      fb,
		ledger:  l,
		minLead: minLead,
		now:     time.Now,
	}
}

// PublishNow posts immediately. On platform failure the error is returned
// to the caller and a FAILED record is written best-effort. After a
// successful publish a permalink is fetched best-effort.
func (s *Service) PublishNow(ctx context.Context, req Request) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var (
		result facebook.PublishResult
		err    error
	)
	if req.ImageURL != "" {
		result, err = s.fb.PostPhoto(ctx, req.PageID, req.AccessToken, req.ImageURL, req.Message)
	} else {
		result, err = s.fb.PostText(ctx, req.PageID, req.AccessToken, req.Message)
	}

	postedAt := s.now().UTC()
	if err != nil {
		s.recordFailure(ctx, req, postedAt, false, err)
		return nil, err
	}

	permalink := s.fetchPermalink(ctx, result.ID, req.AccessToken)

	record, err := s.ledger.RecordImmediate(ctx, ledger.RecordParams{
		ImageURL:       req.ImageURL,
		Caption:        req.Message,
		AccessToken:    req.AccessToken,
		PageID:         req.PageID,
		Status:         models.PostStatusPosted,
		ScheduledAt:    &postedAt,
		ExternalPostID: result.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: post published (id %s): %v", ErrRecordFailed, result.ID, err)
	}

	return &Result{Record: record, Permalink: permalink}, nil
}

// Schedule hands the post to Facebook's own scheduler. The lead-time
// precondition is checked before any external call; a SCHEDULED record is
// only written once the platform accepted the call.
func (s *Service) Schedule(ctx context.Context, req Request, at time.Time) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if at.Sub(s.now()) < s.minLead {
		return nil, models.NewValidationError("scheduleTime",
			fmt.Sprintf("must be at least %s in the future", s.minLead))
	}

	var (
		result facebook.PublishResult
		err    error
	)
	if req.ImageURL != "" {
		result, err = s.fb.SchedulePhoto(ctx, req.PageID, req.AccessToken, req.ImageURL, req.Message, at)
	} else {
		result, err = s.fb.ScheduleText(ctx, req.PageID, req.AccessToken, req.Message, at)
	}
	if err != nil {
		s.recordFailure(ctx, req, at, true, err)
		return nil, err
	}

	record, err := s.ledger.RecordScheduled(ctx, ledger.RecordParams{
		ImageURL:       req.ImageURL,
		Caption:        req.Message,
		AccessToken:    req.AccessToken,
		PageID:         req.PageID,
		Status:         models.PostStatusScheduled,
		ScheduledAt:    &at,
		ExternalPostID: result.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: post scheduled (id %s): %v", ErrRecordFailed, result.ID, err)
	}

	return &Result{Record: record}, nil
}

// recordFailure writes a FAILED audit record for a rejected platform call.
// It is best-effort: its own failure is logged and swallowed so failed
// attempts never mask the original error.
func (s *Service) recordFailure(ctx context.Context, req Request, at time.Time, scheduled bool, cause error) {
	params := ledger.RecordParams{
		ImageURL:    req.ImageURL,
		Caption:     req.Message,
		AccessToken: req.AccessToken,
		PageID:      req.PageID,
		Status:      models.PostStatusFailed,
		ScheduledAt: &at,
		ErrorReason: failureReason(cause),
	}

	var err error
	if scheduled {
		_, err = s.ledger.RecordScheduled(ctx, params)
	} else {
		_, err = s.ledger.RecordImmediate(ctx, params)
	}
	if err != nil {
		slog.Error("writing FAILED post record failed", "page_id", req.PageID, "error", err)
	}
}

// fetchPermalink is best-effort enrichment after an immediate publish.
func (s *Service) fetchPermalink(ctx context.Context, postID, accessToken string) string {
	permalink, err := s.fb.Permalink(ctx, postID, accessToken)
	if err != nil {
		slog.Warn("fetching permalink failed", "post_id", postID, "error", err)
		return ""
	}
	return permalink
}

// failureReason prefers the platform's own message for audit records.
func failureReason(err error) string {
	var apiErr *facebook.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

func validateRequest(req Request) error {
	if strings.TrimSpace(req.AccessToken) == "" {
		return models.NewValidationError("accessToken", "required")
	}
	if strings.TrimSpace(req.PageID) == "" {
		return models.NewValidationError("pageId", "required")
	}
	if strings.TrimSpace(req.Message) == "" && req.ImageURL == "" {
		return models.NewValidationError("content", "text or mediaUrl is required")
	}
	return nil
}
