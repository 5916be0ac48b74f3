package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	config "github.com/anuragdev21/socialbridge/configs"
	"github.com/anuragdev21/socialbridge/internal/models"
	"github.com/anuragdev21/socialbridge/internal/repository"
	"github.com/anuragdev21/socialbridge/internal/service"
	"github.com/anuragdev21/socialbridge/pkg/utils"
)

// TokenRefreshJob renews access tokens that are about to expire. Instagram
// and Threads refresh with the long-lived token itself; Pinterest and TikTok
// use a separate refresh token. Facebook page tokens do not expire and
// LinkedIn does not issue refresh tokens, so neither shows up here.
type TokenRefreshJob struct {
	cfg config.Config
	ma  repository.MetaAccountRepository
	pa  repository.PinterestAccountRepository
	ta  repository.TiktokAccountRepository
	ig  service.InstagramService
	th  service.ThreadsService
	pin service.PinterestService
	tt  service.TiktokService
}

func NewTokenRefreshJob(
	cfg config.Config,
	ma repository.MetaAccountRepository,
	pa repository.PinterestAccountRepository,
	ta repository.TiktokAccountRepository,
	ig service.InstagramService,
	th service.ThreadsService,
	pin service.PinterestService,
	tt service.TiktokService) *TokenRefreshJob {
	return &TokenRefreshJob{
		cfg: cfg,
		ma:  ma,
		pa:  pa,
		ta:  ta,
		ig:  ig,
		th:  th,
		pin: pin,
		tt:  tt,
	}
}

func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now()
	timeIn30Minutes := currentTime.Add(30 * time.Minute)

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	run := func(fn func()) {
		wg.Add(1)
		semaphore <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-semaphore }()
			fn()
		}()
	}

	metaAccounts, err := c.ma.ListExpiring(ctx, currentTime, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
	}
	for _, acc := range metaAccounts {
		acc := acc
		run(func() { c.refreshMeta(ctx, acc) })
	}

	pinterestAccounts, err := c.pa.ListExpiring(ctx, currentTime, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
	}
	for _, acc := range pinterestAccounts {
		acc := acc
		run(func() { c.refreshPinterest(ctx, acc) })
	}

	tiktokAccounts, err := c.ta.ListExpiring(ctx, currentTime, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
	}
	for _, acc := range tiktokAccounts {
		acc := acc
		run(func() { c.refreshTiktok(ctx, acc) })
	}

	wg.Wait()
}

func (c *TokenRefreshJob) refreshMeta(ctx context.Context, acc *models.MetaAccount) {
	token, err := utils.Decrypt(acc.AccessToken, []byte(c.cfg.SecretKey))
	if err != nil {
		slog.Info("unable to decrypt token", "account_id", acc.ID)
		return
	}

	var newToken string
	var expiresAt time.Time
	switch acc.Platform {
	case models.PlatformInstagram:
		newToken, expiresAt, err = c.ig.RefreshToken(ctx, token)
	case models.PlatformThreads:
		newToken, expiresAt, err = c.th.RefreshToken(ctx, token)
	default:
		return
	}
	if err != nil {
		slog.Info("unable to refresh token", "platform", acc.Platform, "account_id", acc.ID)
		return
	}

	encrypted, err := utils.Encrypt([]byte(newToken), []byte(c.cfg.SecretKey))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	if err := c.ma.UpdateTokens(ctx, acc.ID, encrypted, encrypted, expiresAt); err != nil {
		slog.Info(err.Error())
	}
}

func (c *TokenRefreshJob) refreshPinterest(ctx context.Context, acc *models.PinterestAccount) {
	refreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(c.cfg.SecretKey))
	if err != nil {
		slog.Info("unable to decrypt token", "account_id", acc.ID)
		return
	}

	accessToken, newRefresh, expiresAt, err := c.pin.RefreshToken(ctx, refreshToken)
	if err != nil {
		slog.Info("unable to refresh token", "platform", models.PlatformPinterest, "account_id", acc.ID)
		return
	}

	encryptedAccess, err := utils.Encrypt([]byte(accessToken), []byte(c.cfg.SecretKey))
	if err != nil {
		slog.Info(err.Error())
		return
	}
	encryptedRefresh, err := utils.Encrypt([]byte(newRefresh), []byte(c.cfg.SecretKey))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	if err := c.pa.UpdateTokens(ctx, acc.ID, encryptedAccess, encryptedRefresh, expiresAt); err != nil {
		slog.Info(err.Error())
	}
}

func (c *TokenRefreshJob) refreshTiktok(ctx context.Context, acc *models.TiktokAccount) {
	refreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(c.cfg.SecretKey))
	if err != nil {
		slog.Info("unable to decrypt token", "account_id", acc.ID)
		return
	}

	token, err := c.tt.RefreshToken(ctx, refreshToken)
	if err != nil {
		slog.Info("unable to refresh token", "platform", models.PlatformTiktok, "account_id", acc.ID)
		return
	}

	encryptedAccess, err := utils.Encrypt([]byte(token.AccessToken), []byte(c.cfg.SecretKey))
	if err != nil {
		slog.Info(err.Error())
		return
	}
	encryptedRefresh, err := utils.Encrypt([]byte(token.RefreshToken), []byte(c.cfg.SecretKey))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	if err := c.ta.UpdateTokens(ctx, acc.ID, encryptedAccess, encryptedRefresh, service.GetExpiresAt(int64(token.ExpiresIn))); err != nil {
		slog.Info(err.Error())
	}
}
