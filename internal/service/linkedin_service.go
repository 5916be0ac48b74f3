package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	config "github.com/anuragdev21/socialbridge/configs"
	"github.com/anuragdev21/socialbridge/internal/models"
	"github.com/anuragdev21/socialbridge/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"
)

type LinkedinService interface {
	ExchangeCode(ctx context.Context, code string) (*transfer.ExchangeResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, string, time.Time, error)
	Publish(ctx context.Context, post *models.Post, account *models.LinkedinAccount, accessToken string) (*transfer.PublishResult, error)
}

type linkedinService struct {
	cfg         config.Config
	oauthConfig *oauth2.Config
	httpClient  *http.Client
	apiURL      string
}

func NewLinkedinService(cfg config.Config) *linkedinService {
	return &linkedinService{
		cfg: cfg,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.LinkedinClientID,
			ClientSecret: cfg.LinkedinClientSecret,
			RedirectURL:  cfg.LinkedinRedirectURI,
			Endpoint:     linkedin.Endpoint,
		},
		httpClient: http.DefaultClient,
		apiURL:     "https://api.linkedin.com",
	}
}

// ExchangeCode trades the code for an access token. Identity comes from the
// OpenID Connect id_token when the token response carries one; otherwise the
// /v2/me endpoint fills in the profile.
func (s *linkedinService) ExchangeCode(ctx context.Context, code string) (*transfer.ExchangeResult, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return nil, &TokenExchangeError{Platform: models.PlatformLinkedin, Body: err.Error()}
	}

	result := &transfer.ExchangeResult{
		Platform:     models.PlatformLinkedin,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}

	idToken, _ := token.Extra("id_token").(string)
	if claims := decodeIdentityClaims(idToken); claims != nil && claims.Sub != "" {
		result.UserAccountID = claims.Sub
		result.AccountName = claims.Name
		if result.AccountName == "" {
			result.AccountName = strings.TrimSpace(claims.GivenName + " " + claims.FamilyName)
		}
		result.Username = claims.Email
		return result, nil
	}

	profile, err := s.getProfile(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	result.UserAccountID = profile.ID
	result.AccountName = strings.TrimSpace(profile.LocalizedFirstName + " " + profile.LocalizedLastName)
	return result, nil
}

// decodeIdentityClaims pulls the claims out of a JWS payload without
// verifying the signature. The token arrived over TLS straight from the
// issuer's token endpoint, so only its shape needs checking here.
func decodeIdentityClaims(idToken string) *transfer.LinkedinIdentityClaims {
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return nil
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil
	}

	var claims transfer.LinkedinIdentityClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil
	}
	return &claims
}

func (s *linkedinService) getProfile(ctx context.Context, accessToken string) (*transfer.LinkedinProfile, error) {
	var profile transfer.LinkedinProfile
	err := retryWithBackoff(ctx, 3, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/v2/me", nil)
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
			return &TokenExchangeError{Platform: models.PlatformLinkedin, StatusCode: resp.StatusCode, Body: "profile request failed"}
		}
		return json.NewDecoder(resp.Body).Decode(&profile)
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *linkedinService) RefreshToken(ctx context.Context, refreshToken string) (string, string, time.Time, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	source := s.oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	token, err := source.Token()
	if err != nil {
		slog.Info(err.Error())
		return "", "", time.Time{}, err
	}
	return token.AccessToken, token.RefreshToken, token.Expiry, nil
}

// Publish is a placeholder while the UGC posts integration is pending. It
// honors the dispatcher contract and returns a synthetic post id.
func (s *linkedinService) Publish(ctx context.Context, post *models.Post, account *models.LinkedinAccount, accessToken string) (*transfer.PublishResult, error) {
	suffix, err := gonanoid.New(8)
	if err != nil {
		suffix = fmt.Sprintf("%d", time.Now().UnixNano())
	}
	id := fmt.Sprintf("li_%d_%s", time.Now().UnixMilli(), suffix)
	return &transfer.PublishResult{Success: true, PlatformPostID: id}, nil
}
