package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	config "github.com/anuragdev21/socialbridge/configs"
	"github.com/anuragdev21/socialbridge/internal/models"
	"github.com/anuragdev21/socialbridge/internal/repository"
	"github.com/anuragdev21/socialbridge/internal/transfer"
	"github.com/anuragdev21/socialbridge/pkg/utils"
)

const (
	FACEBOOK_AUTH_URL  = "https://www.facebook.com/v21.0/dialog/oauth"
	INSTAGRAM_AUTH_URL = "https://www.instagram.com/oauth/authorize"
	LINKEDIN_AUTH_URL  = "https://www.linkedin.com/oauth/v2/authorization"
	THREADS_AUTH_URL   = "https://threads.net/oauth/authorize"
	PINTEREST_AUTH_URL = "https://www.pinterest.com/oauth"
	TIKTOK_AUTH_URL    = "https://www.tiktok.com/v2/auth/authorize"
)

type PlatformService interface {
	GetAuthURL(ctx context.Context, platform, tokenString string) (string, error)
	List(ctx context.Context, userID int64) (*transfer.AccountList, error)
	Delete(ctx context.Context, userID int64, platform string, accountID int64) error
}

type platformService struct {
	cfg    config.Config
	ma     repository.MetaAccountRepository
	la     repository.LinkedinAccountRepository
	pa     repository.PinterestAccountRepository
	ta     repository.TiktokAccountRepository
	ua     repository.UserAccountRepository
	tiktok TiktokService
}

func NewPlatformService(
	cfg config.Config,
	ma repository.MetaAccountRepository,
	la repository.LinkedinAccountRepository,
	pa repository.PinterestAccountRepository,
	ta repository.TiktokAccountRepository,
	ua repository.UserAccountRepository,
	tiktok TiktokService) PlatformService {
	return &platformService{
		cfg:    cfg,
		ma:     ma,
		la:     la,
		pa:     pa,
		ta:     ta,
		ua:     ua,
		tiktok: tiktok,
	}
}

// GetAuthURL builds the consent screen URL for a platform. The tokenString is
// the signed state parameter the callback validates before any exchange.
// Missing credentials are a descriptive error, never a consent URL with an
// empty client id.
func (s *platformService) GetAuthURL(ctx context.Context, platform, tokenString string) (string, error) {
	params := url.Values{}
	params.Add("response_type", "code")
	params.Add("state", tokenString)

	switch platform {
	case models.PlatformFacebook:
		if s.cfg.FacebookClientID == "" || s.cfg.FacebookRedirectURI == "" {
			return "", fmt.Errorf("facebook client id or redirect uri is not configured")
		}
		params.Add("client_id", s.cfg.FacebookClientID)
		params.Add("redirect_uri", s.cfg.FacebookRedirectURI)
		params.Add("scope", "pages_show_list,pages_manage_posts,pages_read_engagement,business_management")
		return fmt.Sprintf("%s?%s", FACEBOOK_AUTH_URL, params.Encode()), nil

	case models.PlatformInstagram:
		if s.cfg.InstagramClientID == "" || s.cfg.InstagramRedirectURI == "" {
			return "", fmt.Errorf("instagram client id or redirect uri is not configured")
		}
		params.Add("client_id", s.cfg.InstagramClientID)
		params.Add("redirect_uri", s.cfg.InstagramRedirectURI)
		params.Add("scope", "instagram_business_basic,instagram_business_content_publish")
		return fmt.Sprintf("%s?%s", INSTAGRAM_AUTH_URL, params.Encode()), nil

	case models.PlatformLinkedin:
		if s.cfg.LinkedinClientID == "" || s.cfg.LinkedinRedirectURI == "" {
			return "", fmt.Errorf("linkedin client id or redirect uri is not configured")
		}
		params.Add("client_id", s.cfg.LinkedinClientID)
		params.Add("redirect_uri", s.cfg.LinkedinRedirectURI)
		params.Add("scope", "openid profile email w_member_social")
		return fmt.Sprintf("%s?%s", LINKEDIN_AUTH_URL, params.Encode()), nil

	case models.PlatformThreads:
		if s.cfg.ThreadsAppID == "" || s.cfg.ThreadsRedirectURI == "" {
			return "", fmt.Errorf("threads app id or redirect uri is not configured")
		}
		params.Add("client_id", s.cfg.ThreadsAppID)
		params.Add("redirect_uri", s.cfg.ThreadsRedirectURI)
		params.Add("scope", "threads_basic,threads_content_publish")
		return fmt.Sprintf("%s?%s", THREADS_AUTH_URL, params.Encode()), nil

	case models.PlatformPinterest:
		if s.cfg.PinterestClientID == "" || s.cfg.PinterestRedirectURI == "" {
			return "", fmt.Errorf("pinterest client id or redirect uri is not configured")
		}
		params.Add("client_id", s.cfg.PinterestClientID)
		params.Add("redirect_uri", s.cfg.PinterestRedirectURI)
		params.Add("scope", "boards:read,pins:read,pins:write,user_accounts:read")
		return fmt.Sprintf("%s?%s", PINTEREST_AUTH_URL, params.Encode()), nil

	case models.PlatformTiktok:
		if s.cfg.TiktokClientKey == "" || s.cfg.TiktokRedirectURI == "" {
			return "", fmt.Errorf("tiktok client key or redirect uri is not configured")
		}
		params.Add("client_key", s.cfg.TiktokClientKey)
		params.Add("redirect_uri", s.cfg.TiktokRedirectURI)
		params.Add("scope", "user.info.basic,user.info.profile,video.publish,video.upload")
		return fmt.Sprintf("%s?%s", TIKTOK_AUTH_URL, params.Encode()), nil

	default:
		return "", ErrUnsupportedPlatform
	}
}

func (s *platformService) List(ctx context.Context, userID int64) (*transfer.AccountList, error) {
	var err error

	if userID == 0 {
		err = errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	list := &transfer.AccountList{}

	list.Meta, err = s.ma.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing meta accounts: %w", err)
	}
	list.Linkedin, err = s.la.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing linkedin accounts: %w", err)
	}
	list.Pinterest, err = s.pa.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing pinterest accounts: %w", err)
	}
	list.Tiktok, err = s.ta.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing tiktok accounts: %w", err)
	}

	return list, nil
}

// Delete removes a connected account row and its index entry. TikTok tokens
// are revoked at the provider first, best effort.
func (s *platformService) Delete(ctx context.Context, userID int64, platform string, accountID int64) error {
	var err error

	if userID == 0 {
		err = errors.New("UserID is not valid")
		slog.Info(err.Error())
		return err
	}

	if accountID == 0 {
		err = errors.New("AccountID is not valid")
		slog.Info(err.Error())
		return err
	}

	switch platform {
	case models.PlatformFacebook, models.PlatformInstagram, models.PlatformThreads:
		account, err := s.ma.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil || account.UserID != userID {
			return ErrAccountNotFound
		}
		if err := s.ma.Remove(ctx, accountID); err != nil {
			return err
		}

	case models.PlatformLinkedin:
		account, err := s.la.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil || account.UserID != userID {
			return ErrAccountNotFound
		}
		if err := s.la.Remove(ctx, accountID); err != nil {
			return err
		}

	case models.PlatformPinterest:
		account, err := s.pa.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil || account.UserID != userID {
			return ErrAccountNotFound
		}
		if err := s.pa.Remove(ctx, accountID); err != nil {
			return err
		}

	case models.PlatformTiktok:
		account, err := s.ta.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil || account.UserID != userID {
			return ErrAccountNotFound
		}
		if token, derr := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey)); derr == nil {
			if rerr := s.tiktok.RevokeToken(ctx, token); rerr != nil {
				slog.Info("tiktok token revoke failed", "error", rerr.Error())
			}
		}
		if err := s.ta.Remove(ctx, accountID); err != nil {
			return err
		}

	default:
		return ErrUnsupportedPlatform
	}

	if err := s.ua.RemoveAccount(ctx, userID, platform, accountID); err != nil {
		return err
	}

	return nil
}
