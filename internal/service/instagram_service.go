package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/anuragdev21/socialbridge/configs"
	"github.com/anuragdev21/socialbridge/internal/models"
	"github.com/anuragdev21/socialbridge/internal/transfer"
)

type InstagramService interface {
	ExchangeCode(ctx context.Context, code string) (*transfer.ExchangeResult, error)
	RefreshToken(ctx context.Context, accessToken string) (string, time.Time, error)
	Publish(ctx context.Context, post *models.Post, account *models.MetaAccount, accessToken string) (*transfer.PublishResult, error)
}

type instagramService struct {
	cfg          config.Config
	httpClient   *http.Client
	apiURL       string
	graphURL     string
	publishDelay time.Duration
}

func NewInstagramService(cfg config.Config) *instagramService {
	return &instagramService{
		cfg:          cfg,
		httpClient:   http.DefaultClient,
		apiURL:       "https://api.instagram.com",
		graphURL:     "https://graph.instagram.com",
		publishDelay: time.Second,
	}
}

// ExchangeCode runs the three-step Instagram login flow: short-lived token,
// long-lived token, then the profile. Personal accounts are rejected, only
// BUSINESS accounts can publish through the API.
func (s *instagramService) ExchangeCode(ctx context.Context, code string) (*transfer.ExchangeResult, error) {
	shortLived, err := s.getShortLivedToken(ctx, code)
	if err != nil {
		return nil, err
	}

	longLived, err := s.getLongLivedToken(ctx, shortLived.AccessToken)
	if err != nil {
		return nil, err
	}

	profile, err := s.getProfile(ctx, longLived.AccessToken)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(profile.AccountType, "BUSINESS") {
		return nil, &UnsupportedAccountTypeError{AccountType: profile.AccountType}
	}

	name := profile.Name
	if name == "" {
		name = profile.Username
	}

	return &transfer.ExchangeResult{
		Platform:      models.PlatformInstagram,
		UserAccountID: profile.ID,
		AccountName:   name,
		Username:      profile.Username,
		AccessToken:   longLived.AccessToken,
		RefreshToken:  longLived.AccessToken,
		ExpiresAt:     GetExpiresAt(longLived.ExpiresIn),
	}, nil
}

func (s *instagramService) getShortLivedToken(ctx context.Context, code string) (*transfer.InstagramTokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", s.cfg.InstagramClientID)
	form.Set("client_secret", s.cfg.InstagramClientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", s.cfg.InstagramRedirectURI)
	form.Set("code", code)

	var result transfer.InstagramTokenResponse
	err := postForm(ctx, s.httpClient, models.PlatformInstagram, s.apiURL+"/oauth/access_token", form, &result)
	if err != nil {
		return nil, err
	}
	if result.AccessToken == "" {
		return nil, &TokenExchangeError{Platform: models.PlatformInstagram, Body: "no access token in response"}
	}
	return &result, nil
}

func (s *instagramService) getLongLivedToken(ctx context.Context, shortLivedToken string) (*transfer.InstagramLongLivedTokenResponse, error) {
	reqURL := fmt.Sprintf(
		"%s/access_token?grant_type=ig_exchange_token&client_secret=%s&access_token=%s",
		s.graphURL, url.QueryEscape(s.cfg.InstagramClientSecret), url.QueryEscape(shortLivedToken),
	)

	var result transfer.InstagramLongLivedTokenResponse
	if err := getJSON(ctx, s.httpClient, models.PlatformInstagram, reqURL, &result); err != nil {
		return nil, err
	}
	if result.AccessToken == "" {
		return nil, &TokenExchangeError{Platform: models.PlatformInstagram, Body: "no long-lived token in response"}
	}
	return &result, nil
}

func (s *instagramService) getProfile(ctx context.Context, accessToken string) (*transfer.InstagramProfile, error) {
	reqURL := fmt.Sprintf(
		"%s/me?fields=id,username,name,account_type,media_count,profile_picture_url&access_token=%s",
		s.graphURL, url.QueryEscape(accessToken),
	)

	var profile transfer.InstagramProfile
	err := retryWithBackoff(ctx, 3, func() error {
		return getJSON(ctx, s.httpClient, models.PlatformInstagram, reqURL, &profile)
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// RefreshToken extends a long-lived token for another 60 days.
func (s *instagramService) RefreshToken(ctx context.Context, accessToken string) (string, time.Time, error) {
	reqURL := fmt.Sprintf(
		"%s/refresh_access_token?grant_type=ig_refresh_token&access_token=%s",
		s.graphURL, url.QueryEscape(accessToken),
	)

	var result transfer.InstagramLongLivedTokenResponse
	if err := getJSON(ctx, s.httpClient, models.PlatformInstagram, reqURL, &result); err != nil {
		return "", time.Time{}, err
	}
	if result.AccessToken == "" {
		return "", time.Time{}, &TokenExchangeError{Platform: models.PlatformInstagram, Body: "no access token in refresh response"}
	}
	return result.AccessToken, GetExpiresAt(result.ExpiresIn), nil
}

// Publish runs the container protocol: create a media container, give the
// platform a moment to process it, then publish the container.
func (s *instagramService) Publish(ctx context.Context, post *models.Post, account *models.MetaAccount, accessToken string) (*transfer.PublishResult, error) {
	accountID := account.IGBusinessID
	if accountID == "" {
		accountID = account.UserAccountID
	}

	media := post.Media()
	if len(media) == 0 {
		return nil, &PublishError{Platform: models.PlatformInstagram, Message: "instagram posts require at least one image"}
	}

	containerID, err := s.createContainer(ctx, accountID, accessToken, post.Content, media[0])
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.publishDelay):
	}

	publishID, err := s.publishContainer(ctx, accountID, accessToken, containerID)
	if err != nil {
		return nil, err
	}

	return &transfer.PublishResult{Success: true, PlatformPostID: publishID}, nil
}

func (s *instagramService) createContainer(ctx context.Context, accountID, accessToken, caption, imageURL string) (string, error) {
	payload := map[string]interface{}{
		"image_url":    imageURL,
		"caption":      caption,
		"access_token": accessToken,
	}

	var result struct {
		ID string `json:"id"`
	}
	err := postJSON(ctx, s.httpClient, models.PlatformInstagram, s.graphURL+"/v21.0/"+accountID+"/media", payload, &result)
	if err != nil {
		return "", asPublishError(models.PlatformInstagram, err)
	}
	if result.ID == "" {
		return "", &PublishError{Platform: models.PlatformInstagram, Message: "no container id returned"}
	}
	return result.ID, nil
}

func (s *instagramService) publishContainer(ctx context.Context, accountID, accessToken, containerID string) (string, error) {
	payload := map[string]string{
		"creation_id":  containerID,
		"access_token": accessToken,
	}

	var result struct {
		ID string `json:"id"`
	}
	err := postJSON(ctx, s.httpClient, models.PlatformInstagram, s.graphURL+"/v21.0/"+accountID+"/media_publish", payload, &result)
	if err != nil {
		return "", asPublishError(models.PlatformInstagram, err)
	}
	if result.ID == "" {
		return "", &PublishError{Platform: models.PlatformInstagram, Message: "no publish id returned"}
	}
	return result.ID, nil
}
