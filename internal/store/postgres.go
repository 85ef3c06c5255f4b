package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/postpilot/postpilot/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Posts ---

func (s *PostgresStore) CreatePost(ctx context.Context, post *models.PostRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO posts (id, image_url, caption, access_token, page_id, status, scheduled_at, external_post_id, error_reason, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		post.ID, post.ImageURL, post.Caption, post.AccessToken, post.PageID,
		post.Status, post.ScheduledAt, post.ExternalPostID, post.ErrorReason,
		post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPost(ctx context.Context, id uuid.UUID) (*models.PostRecord, error) {
	var p models.PostRecord
	err := s.pool.QueryRow(ctx,
		`SELECT id, image_url, caption, access_token, page_id, status, scheduled_at, external_post_id, error_reason, created_at, updated_at
		 FROM posts WHERE id = $1`, id,
	).Scan(&p.ID, &p.ImageURL, &p.Caption, &p.AccessToken, &p.PageID, &p.Status,
		&p.ScheduledAt, &p.ExternalPostID, &p.ErrorReason, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) ListPosts(ctx context.Context, filter PostFilter) ([]*models.PostRecord, int, error) {
	// Build WHERE clause dynamically
	conditions := []string{"TRUE"}
	args := []any{}
	argIdx := 1

	if filter.PageID != "" {
		conditions = append(conditions, fmt.Sprintf("page_id = $%d", argIdx))
		args = append(args, filter.PageID)
		argIdx++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	// Count query
	var total int
	countQuery := "SELECT COUNT(*) FROM posts WHERE " + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	// Normalize pagination
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	// Data query
	dataQuery := fmt.Sprintf(
		`SELECT id, image_url, caption, access_token, page_id, status, scheduled_at, external_post_id, error_reason, created_at, updated_at
		 FROM posts WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.PostRecord
	for rows.Next() {
		var p models.PostRecord
		if err := rows.Scan(&p.ID, &p.ImageURL, &p.Caption, &p.AccessToken, &p.PageID,
			&p.Status, &p.ScheduledAt, &p.ExternalPostID, &p.ErrorReason,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, &p)
	}
	return posts, total, rows.Err()
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
