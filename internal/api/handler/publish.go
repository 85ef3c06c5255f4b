package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/postpilot/postpilot/internal/api/response"
	"github.com/postpilot/postpilot/internal/facebook"
	"github.com/postpilot/postpilot/internal/publish"
	"github.com/postpilot/postpilot/pkg/models"
)

// Publisher defines the interface the publish handlers depend on.
type Publisher interface {
	PublishNow(ctx context.Context, req publish.Request) (*publish.Result, error)
	Schedule(ctx context.Context, req publish.Request, at time.Time) (*publish.Result, error)
}

// contentBody is the chosen candidate as submitted by the client.
type contentBody struct {
	Text     string `json:"text"`
	Hashtags string `json:"hashtags"`
	MediaURL string `json:"media_url"`
}

type publishBody struct {
	AccessToken  string          `json:"access_token"`
	PageID       string          `json:"page_id"`
	Content      *contentBody    `json:"content"`
	ScheduleTime json.RawMessage `json:"schedule_time"`
}

// NewPostNowHandler returns an http.HandlerFunc for POST /api/v1/post-to-facebook.
func NewPostNowHandler(svc Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := decodePublishBody(w, r)
		if !ok {
			return
		}

		result, err := svc.PublishNow(r.Context(), publishRequest(body))
		if err != nil {
			writePublishError(w, err)
			return
		}

		response.Created(w, postNowResponse{
			Record:    result.Record,
			Permalink: result.Permalink,
		})
	}
}

// NewSchedulePostHandler returns an http.HandlerFunc for POST /api/v1/schedule-post.
func NewSchedulePostHandler(svc Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := decodePublishBody(w, r)
		if !ok {
			return
		}

		at, err := publish.ParseScheduleTime(body.ScheduleTime)
		if err != nil {
			writePublishError(w, err)
			return
		}

		result, err := svc.Schedule(r.Context(), publishRequest(body), at)
		if err != nil {
			writePublishError(w, err)
			return
		}

		response.Created(w, result.Record)
	}
}

func decodePublishBody(w http.ResponseWriter, r *http.Request) (publishBody, bool) {
	var body publishBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return publishBody{}, false
	}
	if body.Content == nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "content is required", nil)
		return publishBody{}, false
	}
	return body, true
}

// publishRequest folds the submitted candidate into the dispatcher's shape.
// The caption is the text and hashtags joined by a blank line.
func publishRequest(body publishBody) publish.Request {
	parts := make([]string, 0, 2)
	if t := strings.TrimSpace(body.Content.Text); t != "" {
		parts = append(parts, t)
	}
	if h := strings.TrimSpace(body.Content.Hashtags); h != "" {
		parts = append(parts, h)
	}

	return publish.Request{
		PageID:      body.PageID,
		AccessToken: body.AccessToken,
		Message:     strings.Join(parts, "\n\n"),
		ImageURL:    body.Content.MediaURL,
	}
}

// writePublishError maps dispatcher errors onto the API error taxonomy.
func writePublishError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", ve.Error(),
			map[string]string{"field": ve.Field})
		return
	}

	var apiErr *facebook.APIError
	switch {
	case errors.As(err, &apiErr):
		response.Error(w, http.StatusBadGateway, "EXTERNAL_API_ERROR",
			"Facebook rejected the request: "+apiErr.Message, nil)
	case errors.Is(err, facebook.ErrGraphUnreachable), errors.Is(err, facebook.ErrGraphTimeout):
		response.Error(w, http.StatusBadGateway, "EXTERNAL_API_ERROR",
			"Facebook could not be reached", nil)
	case errors.Is(err, publish.ErrRecordFailed):
		response.Error(w, http.StatusInternalServerError, "PERSISTENCE_ERROR",
			err.Error(), nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}

type postNowResponse struct {
	Record    *models.PostRecord `json:"record"`
	Permalink string             `json:"permalink,omitempty"`
}
