package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	config "github.com/anuragdev21/socialbridge/configs"
	"github.com/anuragdev21/socialbridge/internal/models"
	"github.com/anuragdev21/socialbridge/internal/transfer"
)

type ThreadsService interface {
	ExchangeCode(ctx context.Context, code string) (*transfer.ExchangeResult, error)
	RefreshToken(ctx context.Context, accessToken string) (string, time.Time, error)
	Publish(ctx context.Context, post *models.Post, account *models.MetaAccount, accessToken string) (*transfer.PublishResult, error)
}

type threadsService struct {
	cfg          config.Config
	httpClient   *http.Client
	graphURL     string
	publishDelay time.Duration
}

func NewThreadsService(cfg config.Config) *threadsService {
	return &threadsService{
		cfg:          cfg,
		httpClient:   http.DefaultClient,
		graphURL:     "https://graph.threads.net",
		publishDelay: time.Second,
	}
}

// ExchangeCode trades the code for a short-lived token, upgrades it to a
// long-lived one, and fetches the profile. A failed long-lived exchange is
// not fatal: the short-lived token is kept with a one hour expiry.
func (s *threadsService) ExchangeCode(ctx context.Context, code string) (*transfer.ExchangeResult, error) {
	shortLived, err := s.getShortLivedToken(ctx, code)
	if err != nil {
		return nil, err
	}

	accessToken := shortLived.AccessToken
	expiresAt := time.Now().Add(time.Hour)

	longLived, err := s.getLongLivedToken(ctx, shortLived.AccessToken)
	if err != nil {
		slog.Info("threads long-lived token exchange failed, keeping short-lived token", "error", err.Error())
	} else {
		accessToken = longLived.AccessToken
		expiresAt = GetExpiresAt(longLived.ExpiresIn)
	}

	profile, err := s.getProfile(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	name := profile.Name
	if name == "" {
		name = profile.Username
	}

	userAccountID := profile.ID
	if userAccountID == "" && shortLived.UserID != 0 {
		userAccountID = strconv.FormatInt(shortLived.UserID, 10)
	}

	return &transfer.ExchangeResult{
		Platform:      models.PlatformThreads,
		UserAccountID: userAccountID,
		PageID:        userAccountID,
		AccountName:   name,
		Username:      profile.Username,
		AccessToken:   accessToken,
		RefreshToken:  accessToken,
		ExpiresAt:     expiresAt,
	}, nil
}

// getShortLivedToken posts the code exchange form. The endpoint has been seen
// answering with both JSON and URL-encoded bodies, so both are accepted.
func (s *threadsService) getShortLivedToken(ctx context.Context, code string) (*transfer.ThreadsTokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", s.cfg.ThreadsAppID)
	form.Set("client_secret", s.cfg.ThreadsAppSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", s.cfg.ThreadsRedirectURI)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.graphURL+"/oauth/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TokenExchangeError{Platform: models.PlatformThreads, StatusCode: resp.StatusCode, Body: string(body)}
	}

	token, err := parseThreadsTokenBody(body)
	if err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, &TokenExchangeError{Platform: models.PlatformThreads, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return token, nil
}

func parseThreadsTokenBody(body []byte) (*transfer.ThreadsTokenResponse, error) {
	var token transfer.ThreadsTokenResponse
	if err := json.Unmarshal(body, &token); err == nil {
		return &token, nil
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse threads token response: %w", err)
	}
	token.AccessToken = values.Get("access_token")
	if uid := values.Get("user_id"); uid != "" {
		token.UserID, _ = strconv.ParseInt(uid, 10, 64)
	}
	if exp := values.Get("expires_in"); exp != "" {
		token.ExpiresIn, _ = strconv.ParseInt(exp, 10, 64)
	}
	return &token, nil
}

func (s *threadsService) getLongLivedToken(ctx context.Context, shortLivedToken string) (*transfer.ThreadsTokenResponse, error) {
	reqURL := fmt.Sprintf(
		"%s/access_token?grant_type=th_exchange_token&client_secret=%s&access_token=%s",
		s.graphURL, url.QueryEscape(s.cfg.ThreadsAppSecret), url.QueryEscape(shortLivedToken),
	)

	var result transfer.ThreadsTokenResponse
	if err := getJSON(ctx, s.httpClient, models.PlatformThreads, reqURL, &result); err != nil {
		return nil, err
	}
	if result.AccessToken == "" {
		return nil, &TokenExchangeError{Platform: models.PlatformThreads, Body: "no long-lived token in response"}
	}
	return &result, nil
}

func (s *threadsService) getProfile(ctx context.Context, accessToken string) (*transfer.ThreadsProfile, error) {
	reqURL := fmt.Sprintf(
		"%s/v1.0/me?fields=id,username,name,threads_profile_picture_url&access_token=%s",
		s.graphURL, url.QueryEscape(accessToken),
	)

	var profile transfer.ThreadsProfile
	err := retryWithBackoff(ctx, 3, func() error {
		return getJSON(ctx, s.httpClient, models.PlatformThreads, reqURL, &profile)
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// RefreshToken extends a long-lived token for another 60 days.
func (s *threadsService) RefreshToken(ctx context.Context, accessToken string) (string, time.Time, error) {
	reqURL := fmt.Sprintf(
		"%s/refresh_access_token?grant_type=th_refresh_token&access_token=%s",
		s.graphURL, url.QueryEscape(accessToken),
	)

	var result transfer.ThreadsTokenResponse
	if err := getJSON(ctx, s.httpClient, models.PlatformThreads, reqURL, &result); err != nil {
		return "", time.Time{}, err
	}
	if result.AccessToken == "" {
		return "", time.Time{}, &TokenExchangeError{Platform: models.PlatformThreads, Body: "no access token in refresh response"}
	}
	return result.AccessToken, GetExpiresAt(result.ExpiresIn), nil
}

// Publish creates an IMAGE container when the post carries media, a TEXT
// container otherwise, then publishes it after a short delay.
func (s *threadsService) Publish(ctx context.Context, post *models.Post, account *models.MetaAccount, accessToken string) (*transfer.PublishResult, error) {
	if account.PageID == "" && account.UserAccountID == "" {
		return nil, &PublishError{Platform: models.PlatformThreads, Message: "account has no threads user id"}
	}
	if accessToken == "" {
		return nil, &PublishError{Platform: models.PlatformThreads, Message: "account has no access token"}
	}

	accountID := account.PageID
	if accountID == "" {
		accountID = account.UserAccountID
	}

	media := post.Media()
	payload := map[string]interface{}{
		"text":         post.Content,
		"access_token": accessToken,
	}
	if len(media) > 0 {
		payload["media_type"] = "IMAGE"
		payload["image_url"] = media[0]
	} else {
		payload["media_type"] = "TEXT"
	}

	var container struct {
		ID string `json:"id"`
	}
	err := postJSON(ctx, s.httpClient, models.PlatformThreads, s.graphURL+"/v1.0/"+accountID+"/threads", payload, &container)
	if err != nil {
		return nil, asPublishError(models.PlatformThreads, err)
	}
	if container.ID == "" {
		return nil, &PublishError{Platform: models.PlatformThreads, Message: "no container id returned"}
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.publishDelay):
	}

	publishPayload := map[string]string{
		"creation_id":  container.ID,
		"access_token": accessToken,
	}

	var result struct {
		ID string `json:"id"`
	}
	err = postJSON(ctx, s.httpClient, models.PlatformThreads, s.graphURL+"/v1.0/"+accountID+"/threads_publish", publishPayload, &result)
	if err != nil {
		return nil, asPublishError(models.PlatformThreads, err)
	}
	if result.ID == "" {
		return nil, &PublishError{Platform: models.PlatformThreads, Message: "no publish id returned"}
	}

	return &transfer.PublishResult{Success: true, PlatformPostID: result.ID}, nil
}
