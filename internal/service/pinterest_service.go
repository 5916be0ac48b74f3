package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/anuragdev21/socialbridge/configs"
	"github.com/anuragdev21/socialbridge/internal/models"
	"github.com/anuragdev21/socialbridge/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type PinterestService interface {
	ExchangeCode(ctx context.Context, code string) (*transfer.ExchangeResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, string, time.Time, error)
	Publish(ctx context.Context, post *models.Post, account *models.PinterestAccount, accessToken string) (*transfer.PublishResult, error)
}

type pinterestService struct {
	cfg        config.Config
	httpClient *http.Client
	apiURL     string
}

func NewPinterestService(cfg config.Config) *pinterestService {
	return &pinterestService{
		cfg:        cfg,
		httpClient: http.DefaultClient,
		apiURL:     "https://api.pinterest.com",
	}
}

// ExchangeCode trades the code for tokens. Pinterest authenticates the token
// endpoint with HTTP Basic credentials rather than form fields.
func (s *pinterestService) ExchangeCode(ctx context.Context, code string) (*transfer.ExchangeResult, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", s.cfg.PinterestRedirectURI)

	token, err := s.requestToken(ctx, form)
	if err != nil {
		return nil, err
	}

	profile, err := s.getUserAccount(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	name := profile.BusinessName
	if name == "" {
		name = profile.Username
	}

	return &transfer.ExchangeResult{
		Platform:      models.PlatformPinterest,
		UserAccountID: profile.ID,
		AccountName:   name,
		Username:      profile.Username,
		AccessToken:   token.AccessToken,
		RefreshToken:  token.RefreshToken,
		ExpiresAt:     GetExpiresAt(token.ExpiresIn),
	}, nil
}

func (s *pinterestService) requestToken(ctx context.Context, form url.Values) (*transfer.PinterestTokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/v5/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.cfg.PinterestClientID, s.cfg.PinterestClientSecret)

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

	if resp.StatusCode != http.StatusOK {
		var pinErr transfer.PinterestErrorResponse
		if err := json.Unmarshal(body, &pinErr); err == nil && pinErr.Message != "" {
			return nil, &TokenExchangeError{Platform: models.PlatformPinterest, StatusCode: resp.StatusCode, Body: pinErr.Message}
		}
		return nil, &TokenExchangeError{Platform: models.PlatformPinterest, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var token transfer.PinterestTokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, &TokenExchangeError{Platform: models.PlatformPinterest, StatusCode: resp.StatusCode, Body: "no access token in response"}
	}
	return &token, nil
}

func (s *pinterestService) getUserAccount(ctx context.Context, accessToken string) (*transfer.PinterestUserAccount, error) {
	var profile transfer.PinterestUserAccount
	err := retryWithBackoff(ctx, 3, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/v5/user_account", nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			slog.Info(err.Error())
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &TokenExchangeError{Platform: models.PlatformPinterest, StatusCode: resp.StatusCode, Body: "user account request failed"}
		}
		return json.NewDecoder(resp.Body).Decode(&profile)
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *pinterestService) RefreshToken(ctx context.Context, refreshToken string) (string, string, time.Time, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	token, err := s.requestToken(ctx, form)
	if err != nil {
		return "", "", time.Time{}, err
	}

	newRefresh := token.RefreshToken
	if newRefresh == "" {
		newRefresh = refreshToken
	}
	return token.AccessToken, newRefresh, GetExpiresAt(token.ExpiresIn), nil
}

// Publish is a placeholder while pin creation is pending. It honors the
// dispatcher contract and returns a synthetic pin id.
func (s *pinterestService) Publish(ctx context.Context, post *models.Post, account *models.PinterestAccount, accessToken string) (*transfer.PublishResult, error) {
	suffix, err := gonanoid.New(8)
	if err != nil {
		suffix = fmt.Sprintf("%d", time.Now().UnixNano())
	}
	id := fmt.Sprintf("pin_%d_%s", time.Now().UnixMilli(), suffix)
	return &transfer.PublishResult{Success: true, PlatformPostID: id}, nil
}
