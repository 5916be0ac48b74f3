package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/anuragdev21/socialbridge/internal/models"
	"github.com/lib/pq"
)

type PostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Post, error)
	UpdateStatus(ctx context.Context, postID int64, status, platformPostID, errorMessage string, publishedAt time.Time) error
	CheckByUserID(ctx context.Context, postID, userID int64) (bool, error)
	Remove(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `
	id, user_id, platform, account_id, content, image_url, media_urls,
	status, scheduled_for, published_at, platform_post_id, error_message,
	created_at, updated_at`

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (user_id, platform, account_id, content, image_url, media_urls, status, scheduled_for)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var scheduledFor interface{}
	if !post.ScheduledFor.IsZero() {
		scheduledFor = post.ScheduledFor
	}

	args := []interface{}{post.UserID, post.Platform, post.AccountID, post.Content,
		post.ImageURL, pq.Array(post.MediaURLs), post.Status, scheduledFor}

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func scanPost(scan func(dest ...interface{}) error) (*models.Post, error) {
	var post models.Post
	var imageURL, platformPostID, errorMessage sql.NullString
	var scheduledFor, publishedAt sql.NullTime

	err := scan(&post.ID, &post.UserID, &post.Platform, &post.AccountID, &post.Content,
		&imageURL, pq.Array(&post.MediaURLs), &post.Status, &scheduledFor, &publishedAt,
		&platformPostID, &errorMessage, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}

	post.ImageURL = imageURL.String
	post.PlatformPostID = platformPostID.String
	post.ErrorMessage = errorMessage.String
	post.ScheduledFor = scheduledFor.Time
	post.PublishedAt = publishedAt.Time
	return &post, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	post, err := scanPost(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func (r *postRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows.Scan)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// UpdateStatus writes a status transition. An empty platformPostID leaves the
// stored one untouched; errorMessage is written as-is so a new attempt clears
// the previous failure. publishedAt is recorded only when non-zero.
func (r *postRepository) UpdateStatus(ctx context.Context, postID int64, status, platformPostID, errorMessage string, publishedAt time.Time) error {
	query := `
		UPDATE posts
		SET status = $2,
			platform_post_id = COALESCE(NULLIF($3, ''), platform_post_id),
			error_message = NULLIF($4, ''),
			published_at = COALESCE($5, published_at),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	var published interface{}
	if !publishedAt.IsZero() {
		published = publishedAt
	}

	_, err := r.db.ExecContext(ctx, query, postID, status, platformPostID, errorMessage, published)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	query := "SELECT 1 FROM posts WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
