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

type TiktokService interface {
	ExchangeCode(ctx context.Context, code string) (*transfer.ExchangeResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*transfer.TiktokTokenResponse, error)
	RevokeToken(ctx context.Context, accessToken string) error
	Publish(ctx context.Context, post *models.Post, account *models.TiktokAccount, accessToken string) (*transfer.PublishResult, error)
}

type tiktokService struct {
	cfg        config.Config
	httpClient *http.Client
	apiURL     string
}

func NewTiktokService(cfg config.Config) *tiktokService {
	return &tiktokService{
		cfg:        cfg,
		httpClient: http.DefaultClient,
		apiURL:     "https://open.tiktokapis.com",
	}
}

// ExchangeCode trades the code for tokens and validates every field the rest
// of the system depends on. The display name falls back to a synthetic one
// when the user info call fails, a missing name must not block the connect.
func (s *tiktokService) ExchangeCode(ctx context.Context, code string) (*transfer.ExchangeResult, error) {
	form := url.Values{}
	form.Set("client_key", s.cfg.TiktokClientKey)
	form.Set("client_secret", s.cfg.TiktokClientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", s.cfg.TiktokRedirectURI)

	token, err := s.requestToken(ctx, form)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("TikTok Account (%s)", token.OpenID)
	username := ""
	if user, err := s.getUserInfo(ctx, token.AccessToken); err != nil {
		slog.Info("tiktok user info fetch failed, using fallback display name", "error", err.Error())
	} else {
		if user.DisplayName != "" {
			name = user.DisplayName
		}
		username = user.Username
	}

	return &transfer.ExchangeResult{
		Platform:      models.PlatformTiktok,
		UserAccountID: token.OpenID,
		AccountName:   name,
		Username:      username,
		AccessToken:   token.AccessToken,
		RefreshToken:  token.RefreshToken,
		ExpiresAt:     GetExpiresAt(int64(token.ExpiresIn)),
	}, nil
}

func (s *tiktokService) requestToken(ctx context.Context, form url.Values) (*transfer.TiktokTokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/v2/oauth/token/", strings.NewReader(form.Encode()))
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

	var token transfer.TiktokTokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		slog.Info(err.Error())
		return nil, &TokenExchangeError{Platform: models.PlatformTiktok, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if token.Error != "" {
		return nil, &OAuthError{Code: token.Error, Description: token.ErrorDescription}
	}
	if err := validateTiktokToken(&token); err != nil {
		return nil, err
	}
	return &token, nil
}

// validateTiktokToken rejects token responses missing any field the account
// record needs. TikTok reports some failures inside an HTTP 200 body, so the
// fields are checked one by one.
func validateTiktokToken(token *transfer.TiktokTokenResponse) error {
	switch {
	case token.AccessToken == "":
		return &TokenExchangeError{Platform: models.PlatformTiktok, Body: "missing access_token in response"}
	case token.RefreshToken == "":
		return &TokenExchangeError{Platform: models.PlatformTiktok, Body: "missing refresh_token in response"}
	case token.ExpiresIn <= 0:
		return &TokenExchangeError{Platform: models.PlatformTiktok, Body: "missing expires_in in response"}
	case token.OpenID == "":
		return &TokenExchangeError{Platform: models.PlatformTiktok, Body: "missing open_id in response"}
	}
	return nil
}

func (s *tiktokService) getUserInfo(ctx context.Context, accessToken string) (*transfer.TiktokUser, error) {
	reqURL := s.apiURL + "/v2/user/info/?fields=open_id,avatar_url,display_name,username"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	var result transfer.TiktokUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if result.Error.Code != "" && result.Error.Code != "ok" {
		return nil, fmt.Errorf("tiktok user info error %s: %s", result.Error.Code, result.Error.Message)
	}
	return &result.Data.User, nil
}

func (s *tiktokService) RefreshToken(ctx context.Context, refreshToken string) (*transfer.TiktokTokenResponse, error) {
	form := url.Values{}
	form.Set("client_key", s.cfg.TiktokClientKey)
	form.Set("client_secret", s.cfg.TiktokClientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	return s.requestToken(ctx, form)
}

func (s *tiktokService) RevokeToken(ctx context.Context, accessToken string) error {
	form := url.Values{}
	form.Set("client_key", s.cfg.TiktokClientKey)
	form.Set("client_secret", s.cfg.TiktokClientSecret)
	form.Set("token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/v2/oauth/revoke/", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tiktok revoke failed with status %d: %s", resp.StatusCode, body)
	}
	return nil
}

// Publish is a placeholder while the content posting API integration is
// pending. It honors the dispatcher contract and returns a synthetic id.
func (s *tiktokService) Publish(ctx context.Context, post *models.Post, account *models.TiktokAccount, accessToken string) (*transfer.PublishResult, error) {
	suffix, err := gonanoid.New(8)
	if err != nil {
		suffix = fmt.Sprintf("%d", time.Now().UnixNano())
	}
	id := fmt.Sprintf("tt_%d_%s", time.Now().UnixMilli(), suffix)
	return &transfer.PublishResult{Success: true, PlatformPostID: id}, nil
}
