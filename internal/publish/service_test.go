package publish

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/postpilot/postpilot/internal/facebook"
	"github.com/postpilot/postpilot/internal/ledger"
	"github.com/postpilot/postpilot/internal/store"
	"github.com/postpilot/postpilot/pkg/models"
)

// --- mocks ---

type fbCall struct {
	method   string
	pageID   string
	message  string
	imageURL string
	at       time.Time
}

type mockFB struct {
	mu        sync.Mutex
	calls     []fbCall
	result    facebook.PublishResult
	err       error
	permalink string
	permErr   error
}

func (f *mockFB) record(c fbCall) (facebook.PublishResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.result, f.err
}

func (f *mockFB) PostText(_ context.Context, pageID, _, message string) (facebook.PublishResult, error) {
	return f.record(fbCall{method: "PostText", pageID: pageID, message: message})
}

func (f *mockFB) PostPhoto(_ context.Context, pageID, _, imageURL, caption string) (facebook.PublishResult, error) {
	return f.record(fbCall{method: "PostPhoto", pageID: pageID, message: caption, imageURL: imageURL})
}

func (f *mockFB) ScheduleText(_ context.Context, pageID, _, message string, at time.Time) (facebook.PublishResult, error) {
	return f.record(fbCall{method: "ScheduleText", pageID: pageID, message: message, at: at})
}

func (f *mockFB) SchedulePhoto(_ context.Context, pageID, _, imageURL, caption string, at time.Time) (facebook.PublishResult, error) {
	return f.record(fbCall{method: "SchedulePhoto", pageID: pageID, message: caption, imageURL: imageURL, at: at})
}

func (f *mockFB) Permalink(_ context.Context, postID, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fbCall{method: "Permalink", message: postID})
	return f.permalink, f.permErr
}

type mockStore struct {
	mu        sync.Mutex
	posts     []*models.PostRecord
	createErr error
}

func (s *mockStore) Ping(_ context.Context) error { return nil }

func (s *mockStore) CreatePost(_ context.Context, post *models.PostRecord) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, post)
	return nil
}

func (s *mockStore) GetPost(_ context.Context, _ uuid.UUID) (*models.PostRecord, error) {
	return nil, store.ErrNotFound
}

func (s *mockStore) ListPosts(_ context.Context, _ store.PostFilter) ([]*models.PostRecord, int, error) {
	return nil, 0, nil
}

// --- helpers ---

func newTestService(fb *mockFB, st *mockStore) *Service {
	svc := NewService(fb, ledger.New(st), 10*time.Minute)
	svc.now = func() time.Time {
		return time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func validRequest() Request {
	return Request{
		PageID:      "page-123",
		AccessToken: "token-abc",
		Message:     "hello world",
	}
}

func fbCalls(f *mockFB) []fbCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fbCall(nil), f.calls...)
}

func storedPosts(s *mockStore) []*models.PostRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.PostRecord(nil), s.posts...)
}

// --- PublishNow tests ---

func TestPublishNow_TextPost(t *testing.T) {
	fb := &mockFB{result: facebook.PublishResult{ID: "post-9"}, permalink: "https://fb.example/post-9"}
	st := &mockStore{}
	svc := newTestService(fb, st)

	res, err := svc.PublishNow(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := fbCalls(fb)
	if len(calls) != 2 || calls[0].method != "PostText" || calls[1].method != "Permalink" {
		t.Fatalf("unexpected call sequence: %+v", calls)
	}
	if res.Permalink != "https://fb.example/post-9" {
		t.Errorf("unexpected permalink: %s", res.Permalink)
	}
	if res.Record.Status != models.PostStatusPosted {
		t.Errorf("expected POSTED, got %s", res.Record.Status)
	}
	if res.Record.ExternalPostID == nil || *res.Record.ExternalPostID != "post-9" {
		t.Error("expected external post id on record")
	}

	posts := storedPosts(st)
	if len(posts) != 1 {
		t.Fatalf("expected 1 record, got %d", len(posts))
	}
}

func TestPublishNow_PhotoPostWhenImagePresent(t *testing.T) {
	fb := &mockFB{result: facebook.PublishResult{ID: "post-9"}}
	st := &mockStore{}
	svc := newTestService(fb, st)

	req := validRequest()
	req.ImageURL = "https://example.com/pic.png"

	if _, err := svc.PublishNow(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := fbCalls(fb)
	if calls[0].method != "PostPhoto" {
		t.Errorf("expected PostPhoto for media request, got %s", calls[0].method)
	}
	if calls[0].imageURL != "https://example.com/pic.png" {
		t.Errorf("unexpected image url: %s", calls[0].imageURL)
	}
}

func TestPublishNow_ValidationBeforeExternalCall(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Request)
		field string
	}{
		{"missing token", func(r *Request) { r.AccessToken = "  " }, "accessToken"},
		{"missing page id", func(r *Request) { r.PageID = "" }, "pageId"},
		{"no text no media", func(r *Request) { r.Message = ""; r.ImageURL = "" }, "content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &mockFB{}
			st := &mockStore{}
			svc := newTestService(fb, st)

			req := validRequest()
			tt.edit(&req)

			_, err := svc.PublishNow(context.Background(), req)
			var vErr *models.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			if vErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, vErr.Field)
			}
			if len(fbCalls(fb)) != 0 {
				t.Error("no external call should happen on validation failure")
			}
			if len(storedPosts(st)) != 0 {
				t.Error("no record should be written on validation failure")
			}
		})
	}
}

func TestPublishNow_MediaOnlyRequestIsValid(t *testing.T) {
	fb := &mockFB{result: facebook.PublishResult{ID: "post-9"}}
	svc := newTestService(fb, &mockStore{})

	req := validRequest()
	req.Message = ""
	req.ImageURL = "https://example.com/pic.png"

	if _, err := svc.PublishNow(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPublishNow_PlatformRejectionWritesFailedRecord(t *testing.T) {
	apiErr := &facebook.APIError{StatusCode: 400, Code: 190, Message: "Invalid OAuth access token."}
	fb := &mockFB{err: apiErr}
	st := &mockStore{}
	svc := newTestService(fb, st)

	_, err := svc.PublishNow(context.Background(), validRequest())
	if !errors.As(err, new(*facebook.APIError)) {
		t.Fatalf("expected platform error surfaced, got: %v", err)
	}

	posts := storedPosts(st)
	if len(posts) != 1 {
		t.Fatalf("expected 1 FAILED audit record, got %d", len(posts))
	}
	if posts[0].Status != models.PostStatusFailed {
		t.Errorf("expected FAILED, got %s", posts[0].Status)
	}
	if posts[0].ErrorReason == nil || *posts[0].ErrorReason != "Invalid OAuth access token." {
		t.Error("expected platform message preserved in error reason")
	}
}

func TestPublishNow_FailedRecordWriteDoesNotMaskPlatformError(t *testing.T) {
	apiErr := &facebook.APIError{StatusCode: 500, Message: "Something went wrong."}
	fb := &mockFB{err: apiErr}
	st := &mockStore{createErr: errors.New("db down")}
	svc := newTestService(fb, st)

	_, err := svc.PublishNow(context.Background(), validRequest())

	var gotAPIErr *facebook.APIError
	if !errors.As(err, &gotAPIErr) {
		t.Fatalf("platform error should survive audit write failure, got: %v", err)
	}
}

func TestPublishNow_PermalinkFailureIsNotFatal(t *testing.T) {
	fb := &mockFB{
		result:  facebook.PublishResult{ID: "post-9"},
		permErr: errors.New("permalink lookup failed"),
	}
	svc := newTestService(fb, &mockStore{})

	res, err := svc.PublishNow(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Permalink != "" {
		t.Errorf("expected empty permalink, got %q", res.Permalink)
	}
	if res.Record.Status != models.PostStatusPosted {
		t.Errorf("expected POSTED, got %s", res.Record.Status)
	}
}

func TestPublishNow_LedgerFailureAfterPublish(t *testing.T) {
	fb := &mockFB{result: facebook.PublishResult{ID: "post-9"}}
	st := &mockStore{createErr: errors.New("db down")}
	svc := newTestService(fb, st)

	_, err := svc.PublishNow(context.Background(), validRequest())
	if !errors.Is(err, ErrRecordFailed) {
		t.Fatalf("expected ErrRecordFailed, got: %v", err)
	}
	// The external id must be recoverable from the error for operators.
	if !errors.Is(err, ErrRecordFailed) || err.Error() == "" {
		t.Error("expected descriptive error")
	}
}

// --- Schedule tests ---

func TestSchedule_TextPost(t *testing.T) {
	fb := &mockFB{result: facebook.PublishResult{ID: "sched-1"}}
	st := &mockStore{}
	svc := newTestService(fb, st)

	at := time.Date(2026, 9, 15, 11, 0, 0, 0, time.UTC)
	res, err := svc.Schedule(context.Background(), validRequest(), at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := fbCalls(fb)
	if len(calls) != 1 || calls[0].method != "ScheduleText" {
		t.Fatalf("unexpected calls: %+v", calls)
	}
	if !calls[0].at.Equal(at) {
		t.Errorf("expected schedule time %v, got %v", at, calls[0].at)
	}
	if res.Record.Status != models.PostStatusScheduled {
		t.Errorf("expected SCHEDULED, got %s", res.Record.Status)
	}
	if res.Record.ScheduledAt == nil || !res.Record.ScheduledAt.Equal(at) {
		t.Error("expected scheduled time on record")
	}
}

func TestSchedule_PhotoPostWhenImagePresent(t *testing.T) {
	fb := &mockFB{result: facebook.PublishResult{ID: "sched-1"}}
	svc := newTestService(fb, &mockStore{})

	req := validRequest()
	req.ImageURL = "https://example.com/pic.png"

	at := time.Date(2026, 9, 15, 11, 0, 0, 0, time.UTC)
	if _, err := svc.Schedule(context.Background(), req, at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls := fbCalls(fb); calls[0].method != "SchedulePhoto" {
		t.Errorf("expected SchedulePhoto, got %s", calls[0].method)
	}
}

func TestSchedule_RejectsInsufficientLeadTime(t *testing.T) {
	fb := &mockFB{}
	st := &mockStore{}
	svc := newTestService(fb, st)

	// now is fixed at 10:00; 10:05 is inside the 10-minute lead window.
	at := time.Date(2026, 9, 15, 10, 5, 0, 0, time.UTC)
	_, err := svc.Schedule(context.Background(), validRequest(), at)

	var vErr *models.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if vErr.Field != "scheduleTime" {
		t.Errorf("expected field 'scheduleTime', got %q", vErr.Field)
	}
	if len(fbCalls(fb)) != 0 {
		t.Error("lead-time rejection must happen before any external call")
	}
	if len(storedPosts(st)) != 0 {
		t.Error("lead-time rejection must not write a record")
	}
}

func TestSchedule_RejectsPastTime(t *testing.T) {
	svc := newTestService(&mockFB{}, &mockStore{})

	at := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	_, err := svc.Schedule(context.Background(), validRequest(), at)
	if err == nil {
		t.Fatal("expected past schedule time to be rejected")
	}
}

func TestSchedule_ExactLeadBoundaryAccepted(t *testing.T) {
	fb := &mockFB{result: facebook.PublishResult{ID: "sched-1"}}
	svc := newTestService(fb, &mockStore{})

	// Exactly now + minLead is allowed.
	at := time.Date(2026, 9, 15, 10, 10, 0, 0, time.UTC)
	if _, err := svc.Schedule(context.Background(), validRequest(), at); err != nil {
		t.Fatalf("unexpected error at exact boundary: %v", err)
	}
}

func TestSchedule_PlatformRejectionWritesFailedRecord(t *testing.T) {
	apiErr := &facebook.APIError{StatusCode: 400, Code: 100, Message: "The scheduled time is too close."}
	fb := &mockFB{err: apiErr}
	st := &mockStore{}
	svc := newTestService(fb, st)

	at := time.Date(2026, 9, 15, 11, 0, 0, 0, time.UTC)
	_, err := svc.Schedule(context.Background(), validRequest(), at)
	if !errors.As(err, new(*facebook.APIError)) {
		t.Fatalf("expected platform error surfaced, got: %v", err)
	}

	posts := storedPosts(st)
	if len(posts) != 1 {
		t.Fatalf("expected 1 FAILED record, got %d", len(posts))
	}
	if posts[0].Status != models.PostStatusFailed {
		t.Errorf("expected FAILED, got %s", posts[0].Status)
	}
	if posts[0].ScheduledAt == nil || !posts[0].ScheduledAt.Equal(at) {
		t.Error("FAILED record should keep the requested schedule time")
	}
}

func TestSchedule_NoRecordUntilPlatformAccepts(t *testing.T) {
	fb := &mockFB{err: errors.New("network blip")}
	st := &mockStore{createErr: errors.New("also down")}
	svc := newTestService(fb, st)

	at := time.Date(2026, 9, 15, 11, 0, 0, 0, time.UTC)
	_, err := svc.Schedule(context.Background(), validRequest(), at)
	if err == nil {
		t.Fatal("expected error")
	}
	// Original platform error is surfaced even though the audit write failed.
	if errors.Is(err, ErrRecordFailed) {
		t.Errorf("audit failure must not replace the platform error: %v", err)
	}
}

func TestSchedule_LedgerFailureAfterAccept(t *testing.T) {
	fb := &mockFB{result: facebook.PublishResult{ID: "sched-1"}}
	st := &mockStore{createErr: errors.New("db down")}
	svc := newTestService(fb, st)

	at := time.Date(2026, 9, 15, 11, 0, 0, 0, time.UTC)
	_, err := svc.Schedule(context.Background(), validRequest(), at)
	if !errors.Is(err, ErrRecordFailed) {
		t.Fatalf("expected ErrRecordFailed, got: %v", err)
	}
}
