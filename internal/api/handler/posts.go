package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/postpilot/postpilot/internal/api/response"
	"github.com/postpilot/postpilot/internal/store"
	"github.com/postpilot/postpilot/pkg/models"
)

// PostLister defines the interface the list handler depends on.
type PostLister interface {
	ListPosts(ctx context.Context, filter store.PostFilter) ([]*models.PostRecord, int, error)
}

// NewListPostsHandler returns an http.HandlerFunc for GET /api/v1/posts.
func NewListPostsHandler(s PostLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		status := q.Get("status")
		if status != "" && !validStatus(status) {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
				"status must be one of DRAFT, SCHEDULED, POSTED, FAILED", nil)
			return
		}

		filter := store.PostFilter{
			PageID: q.Get("page_id"),
			Status: status,
			Page:   intParam(q.Get("page"), 1),
			Limit:  intParam(q.Get("limit"), 20),
		}

		posts, total, err := s.ListPosts(r.Context(), filter)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "PERSISTENCE_ERROR",
				"Failed to list posts", nil)
			return
		}
		if posts == nil {
			posts = []*models.PostRecord{}
		}

		response.Collection(w, posts, response.PaginationMeta{
			Page:    filter.Page,
			Limit:   filter.Limit,
			Total:   total,
			HasNext: filter.Page*filter.Limit < total,
		})
	}
}

func validStatus(s string) bool {
	switch s {
	case models.PostStatusDraft, models.PostStatusScheduled, models.PostStatusPosted, models.PostStatusFailed:
		return true
	}
	return false
}

func intParam(v string, defaultVal int) int {
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
