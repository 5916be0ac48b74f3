package service

import (
	"context"
	"errors"
	"log/slog"

	config "github.com/anuragdev21/socialbridge/configs"
	"github.com/anuragdev21/socialbridge/internal/models"
	"github.com/anuragdev21/socialbridge/internal/repository"
	"github.com/anuragdev21/socialbridge/internal/transfer"
	"github.com/anuragdev21/socialbridge/pkg/utils"
)

// ReconcilerService folds the outcome of a token exchange into the account
// tables. Reconnecting an already linked account refreshes its tokens in
// place instead of creating a duplicate row, and the per-user account index
// gains the row id exactly once.
type ReconcilerService interface {
	Reconcile(ctx context.Context, userID int64, result *transfer.ExchangeResult) (int64, error)
}

type reconcilerService struct {
	cfg config.Config
	ma  repository.MetaAccountRepository
	la  repository.LinkedinAccountRepository
	pa  repository.PinterestAccountRepository
	ta  repository.TiktokAccountRepository
	ua  repository.UserAccountRepository
}

func NewReconcilerService(
	cfg config.Config,
	ma repository.MetaAccountRepository,
	la repository.LinkedinAccountRepository,
	pa repository.PinterestAccountRepository,
	ta repository.TiktokAccountRepository,
	ua repository.UserAccountRepository) ReconcilerService {
	return &reconcilerService{
		cfg: cfg,
		ma:  ma,
		la:  la,
		pa:  pa,
		ta:  ta,
		ua:  ua,
	}
}

func (s *reconcilerService) Reconcile(ctx context.Context, userID int64, result *transfer.ExchangeResult) (int64, error) {
	if result == nil || result.UserAccountID == "" {
		err := errors.New("exchange result has no account id")
		slog.Info(err.Error())
		return 0, err
	}
	if !models.IsSupportedPlatform(result.Platform) {
		return 0, ErrUnsupportedPlatform
	}

	encryptedAccess, err := utils.Encrypt([]byte(result.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return 0, err
	}

	encryptedRefresh := ""
	if result.RefreshToken != "" {
		encryptedRefresh, err = utils.Encrypt([]byte(result.RefreshToken), []byte(s.cfg.SecretKey))
		if err != nil {
			return 0, err
		}
	}

	switch result.Platform {
	case models.PlatformFacebook, models.PlatformInstagram, models.PlatformThreads:
		return s.reconcileMeta(ctx, userID, result, encryptedAccess, encryptedRefresh)
	case models.PlatformLinkedin:
		return s.reconcileLinkedin(ctx, userID, result, encryptedAccess)
	case models.PlatformPinterest:
		return s.reconcilePinterest(ctx, userID, result, encryptedAccess, encryptedRefresh)
	case models.PlatformTiktok:
		return s.reconcileTiktok(ctx, userID, result, encryptedAccess, encryptedRefresh)
	}
	return 0, ErrUnsupportedPlatform
}

func (s *reconcilerService) reconcileMeta(ctx context.Context, userID int64, result *transfer.ExchangeResult, accessToken, refreshToken string) (int64, error) {
	existing, err := s.ma.GetByUserAccount(ctx, userID, result.Platform, result.UserAccountID)
	if err != nil {
		return 0, err
	}

	if existing != nil {
		if err := s.ma.UpdateTokens(ctx, existing.ID, accessToken, refreshToken, result.ExpiresAt); err != nil {
			return 0, err
		}
		return existing.ID, nil
	}

	account := &models.MetaAccount{
		UserID:         userID,
		Platform:       result.Platform,
		PageID:         result.PageID,
		UserAccountID:  result.UserAccountID,
		AccountName:    result.AccountName,
		Username:       result.Username,
		Permissions:    result.Permissions,
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		TokenExpiresAt: result.ExpiresAt,
	}
	if result.Instagram != nil {
		account.IGBusinessID = result.Instagram.ID
		account.InstagramAccount = &models.InstagramSubAccount{
			ID:             result.Instagram.ID,
			Username:       result.Instagram.Username,
			Name:           result.Instagram.Name,
			ProfilePicture: result.Instagram.ProfilePicture,
		}
	}

	id, err := s.ma.Create(ctx, nil, account)
	if err != nil {
		return 0, err
	}

	if err := s.ua.AppendAccount(ctx, userID, result.Platform, id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *reconcilerService) reconcileLinkedin(ctx context.Context, userID int64, result *transfer.ExchangeResult, accessToken string) (int64, error) {
	existing, err := s.la.GetByUserAccount(ctx, userID, result.UserAccountID)
	if err != nil {
		return 0, err
	}

	if existing != nil {
		if err := s.la.UpdateTokens(ctx, existing.ID, accessToken); err != nil {
			return 0, err
		}
		return existing.ID, nil
	}

	account := &models.LinkedinAccount{
		UserID:        userID,
		UserAccountID: result.UserAccountID,
		AccountName:   result.AccountName,
		AccessToken:   accessToken,
	}

	id, err := s.la.Create(ctx, nil, account)
	if err != nil {
		return 0, err
	}

	if err := s.ua.AppendAccount(ctx, userID, result.Platform, id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *reconcilerService) reconcilePinterest(ctx context.Context, userID int64, result *transfer.ExchangeResult, accessToken, refreshToken string) (int64, error) {
	existing, err := s.pa.GetByUserAccount(ctx, userID, result.UserAccountID)
	if err != nil {
		return 0, err
	}

	if existing != nil {
		if err := s.pa.UpdateTokens(ctx, existing.ID, accessToken, refreshToken, result.ExpiresAt); err != nil {
			return 0, err
		}
		return existing.ID, nil
	}

	account := &models.PinterestAccount{
		UserID:         userID,
		UserAccountID:  result.UserAccountID,
		AccountName:    result.AccountName,
		Username:       result.Username,
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		TokenExpiresAt: result.ExpiresAt,
	}

	id, err := s.pa.Create(ctx, nil, account)
	if err != nil {
		return 0, err
	}

	if err := s.ua.AppendAccount(ctx, userID, result.Platform, id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *reconcilerService) reconcileTiktok(ctx context.Context, userID int64, result *transfer.ExchangeResult, accessToken, refreshToken string) (int64, error) {
	existing, err := s.ta.GetByOpenID(ctx, userID, result.UserAccountID)
	if err != nil {
		return 0, err
	}

	if existing != nil {
		if err := s.ta.UpdateTokens(ctx, existing.ID, accessToken, refreshToken, result.ExpiresAt); err != nil {
			return 0, err
		}
		return existing.ID, nil
	}

	account := &models.TiktokAccount{
		UserID:         userID,
		OpenID:         result.UserAccountID,
		AccountName:    result.AccountName,
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		TokenExpiresAt: result.ExpiresAt,
	}

	id, err := s.ta.Create(ctx, nil, account)
	if err != nil {
		return 0, err
	}

	if err := s.ua.AppendAccount(ctx, userID, result.Platform, id); err != nil {
		return 0, err
	}
	return id, nil
}
