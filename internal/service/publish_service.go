package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	config "github.com/anuragdev21/socialbridge/configs"
	"github.com/anuragdev21/socialbridge/internal/models"
	"github.com/anuragdev21/socialbridge/internal/repository"
	"github.com/anuragdev21/socialbridge/internal/transfer"
	"github.com/anuragdev21/socialbridge/pkg/utils"
)

// PublishService routes a due post to its platform publisher and records the
// outcome on the post row. Dispatch never returns a Go error: every failure
// mode lands in the result's Error field so callers have one code path.
type PublishService interface {
	Dispatch(ctx context.Context, postID int64) *transfer.PublishResult
}

type publishService struct {
	cfg       config.Config
	p         repository.PostRepository
	ma        repository.MetaAccountRepository
	la        repository.LinkedinAccountRepository
	pa        repository.PinterestAccountRepository
	ta        repository.TiktokAccountRepository
	facebook  FacebookService
	instagram InstagramService
	threads   ThreadsService
	linkedin  LinkedinService
	pinterest PinterestService
	tiktok    TiktokService
}

func NewPublishService(
	cfg config.Config,
	p repository.PostRepository,
	ma repository.MetaAccountRepository,
	la repository.LinkedinAccountRepository,
	pa repository.PinterestAccountRepository,
	ta repository.TiktokAccountRepository,
	facebook FacebookService,
	instagram InstagramService,
	threads ThreadsService,
	linkedin LinkedinService,
	pinterest PinterestService,
	tiktok TiktokService) PublishService {
	return &publishService{
		cfg:       cfg,
		p:         p,
		ma:        ma,
		la:        la,
		pa:        pa,
		ta:        ta,
		facebook:  facebook,
		instagram: instagram,
		threads:   threads,
		linkedin:  linkedin,
		pinterest: pinterest,
		tiktok:    tiktok,
	}
}

func (s *publishService) Dispatch(ctx context.Context, postID int64) *transfer.PublishResult {
	post, err := s.p.GetByID(ctx, postID)
	if err != nil {
		return failure(err)
	}
	if post == nil {
		return failure(ErrPostNotFound)
	}

	if post.Content == "" && len(post.Media()) == 0 {
		return failure(ErrEmptyPost)
	}

	if !models.CanTransition(post.Status, models.PostStatusPublishing) {
		slog.Info("rejected post status transition",
			"post_id", post.ID, "from", post.Status, "to", models.PostStatusPublishing)
		return failure(fmt.Errorf("%w: %s is already %s", ErrInvalidTransition, "post", post.Status))
	}

	if err := s.p.UpdateStatus(ctx, post.ID, models.PostStatusPublishing, "", "", time.Time{}); err != nil {
		return failure(err)
	}

	result, err := s.publish(ctx, post)
	if err != nil {
		return s.fail(ctx, post, err)
	}
	if !result.Success {
		return s.fail(ctx, post, fmt.Errorf("%s", result.Error))
	}

	err = s.p.UpdateStatus(ctx, post.ID, models.PostStatusPublished, result.PlatformPostID, "", time.Now())
	if err != nil {
		return failure(err)
	}

	slog.Info("post published", "post_id", post.ID, "platform", post.Platform, "platform_post_id", result.PlatformPostID)
	return result
}

func (s *publishService) publish(ctx context.Context, post *models.Post) (*transfer.PublishResult, error) {
	switch post.Platform {
	case models.PlatformFacebook, models.PlatformInstagram, models.PlatformThreads:
		account, err := s.ma.GetByUserAccount(ctx, post.UserID, post.Platform, post.AccountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, ErrAccountNotFound
		}
		token, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
		if err != nil {
			return nil, err
		}
		switch post.Platform {
		case models.PlatformFacebook:
			return s.facebook.Publish(ctx, post, account, token)
		case models.PlatformInstagram:
			return s.instagram.Publish(ctx, post, account, token)
		default:
			return s.threads.Publish(ctx, post, account, token)
		}

	case models.PlatformLinkedin:
		account, err := s.la.GetByUserAccount(ctx, post.UserID, post.AccountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, ErrAccountNotFound
		}
		token, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
		if err != nil {
			return nil, err
		}
		return s.linkedin.Publish(ctx, post, account, token)

	case models.PlatformPinterest:
		account, err := s.pa.GetByUserAccount(ctx, post.UserID, post.AccountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, ErrAccountNotFound
		}
		token, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
		if err != nil {
			return nil, err
		}
		return s.pinterest.Publish(ctx, post, account, token)

	case models.PlatformTiktok:
		account, err := s.ta.GetByOpenID(ctx, post.UserID, post.AccountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, ErrAccountNotFound
		}
		token, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
		if err != nil {
			return nil, err
		}
		return s.tiktok.Publish(ctx, post, account, token)
	}

	return nil, ErrUnsupportedPlatform
}

// fail marks the post failed with the error message, then reports the same
// message to the caller. The stored message lets the dashboard show why and
// lets a retry clear it.
func (s *publishService) fail(ctx context.Context, post *models.Post, cause error) *transfer.PublishResult {
	slog.Info("post publish failed", "post_id", post.ID, "platform", post.Platform, "error", cause.Error())

	err := s.p.UpdateStatus(ctx, post.ID, models.PostStatusFailed, "", cause.Error(), time.Time{})
	if err != nil {
		slog.Info(err.Error())
	}
	return failure(cause)
}

func failure(err error) *transfer.PublishResult {
	return &transfer.PublishResult{Success: false, Error: err.Error()}
}
