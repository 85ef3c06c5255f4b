package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/postpilot/postpilot/pkg/models"
)

var ErrNotFound = errors.New("resource not found")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreatePost(ctx context.Context, post *models.PostRecord) error
	GetPost(ctx context.Context, id uuid.UUID) (*models.PostRecord, error)
	ListPosts(ctx context.Context, filter PostFilter) ([]*models.PostRecord, int, error)
}

// PostFilter narrows and paginates ListPosts.
type PostFilter struct {
	PageID string
	Status string
	Page   int
	Limit  int
}
