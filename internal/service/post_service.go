package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anuragdev21/socialbridge/internal/models"
	"github.com/anuragdev21/socialbridge/internal/repository"
	"github.com/anuragdev21/socialbridge/internal/transfer"
	"github.com/go-playground/validator/v10"
)

type PostService interface {
	CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation) (int64, time.Duration, error)
	List(ctx context.Context, userID int64) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error)
	Remove(ctx context.Context, userID, postID int64) error
	Retry(ctx context.Context, userID, postID int64) error
}

type postService struct {
	pr       repository.PostRepository
	validate *validator.Validate
}

func NewPostService(pr repository.PostRepository) PostService {
	return &postService{
		pr:       pr,
		validate: validator.New(),
	}
}

// CreatePost stores the post and reports the enqueue delay. A post without a
// scheduled time stays a draft and dispatches immediately; a scheduled one
// must point at the future.
func (s *postService) CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation) (int64, time.Duration, error) {
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return 0, 0, err
	}

	if err := s.validate.Struct(pc); err != nil {
		slog.Info(err.Error())
		return 0, 0, err
	}

	if !models.IsSupportedPlatform(pc.Platform) {
		return 0, 0, ErrUnsupportedPlatform
	}

	post := models.Post{
		UserID:    userID,
		Platform:  pc.Platform,
		AccountID: pc.AccountID,
		Content:   pc.Content,
		ImageURL:  pc.ImageURL,
		MediaURLs: pc.MediaURLs,
		Status:    models.PostStatusDraft,
	}

	var delay time.Duration
	if pc.ScheduledFor != "" {
		scheduledTime, err := time.Parse(time.RFC3339, pc.ScheduledFor)
		if err != nil {
			err = fmt.Errorf("invalid scheduled time format: %w", err)
			slog.Error(err.Error())
			return 0, 0, err
		}
		if !scheduledTime.After(time.Now()) {
			err = errors.New("scheduled time must be in the future")
			slog.Info(err.Error())
			return 0, 0, err
		}
		post.Status = models.PostStatusScheduled
		post.ScheduledFor = scheduledTime
		delay = time.Until(scheduledTime)
	}

	postID, err := s.pr.Create(ctx, nil, &post)
	if err != nil {
		return 0, 0, fmt.Errorf("error creating post: %w", err)
	}

	return postID, delay, nil
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error) {
	var err error

	if userID == 0 {
		err = errors.New("User is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	if postID == 0 {
		err = errors.New("post id is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	if !isValid {
		slog.Info(ErrPostNotFound.Error())
		return nil, ErrPostNotFound
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error getting post info: %w", err)
	}

	return post, nil
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.Post, error) {
	posts, err := s.pr.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, nil
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	var err error

	if userID == 0 {
		err = errors.New("User is not valid")
		slog.Info(err.Error())
		return err
	}

	if postID == 0 {
		err = errors.New("post_id is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}

	if !isValid {
		slog.Info(ErrPostNotFound.Error())
		return ErrPostNotFound
	}

	err = s.pr.Remove(ctx, postID)
	if err != nil {
		return fmt.Errorf("error removing post: %w", err)
	}

	return nil
}

// Retry re-queues a failed post. The status stays failed until the dispatcher
// picks it up; only failed posts are eligible.
func (s *postService) Retry(ctx context.Context, userID, postID int64) error {
	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !isValid {
		slog.Info(ErrPostNotFound.Error())
		return ErrPostNotFound
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}

	if post.Status != models.PostStatusFailed {
		return fmt.Errorf("%w: only failed posts can be retried, post is %s", ErrInvalidTransition, post.Status)
	}

	return nil
}
