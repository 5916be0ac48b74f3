package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	config "github.com/anuragdev21/socialbridge/configs"
	"github.com/anuragdev21/socialbridge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTiktokService(ts *httptest.Server) *tiktokService {
	svc := NewTiktokService(config.Config{
		TiktokClientKey:    "tt-key",
		TiktokClientSecret: "tt-secret",
		TiktokRedirectURI:  "http://localhost/auth/tiktok/callback",
	})
	svc.httpClient = ts.Client()
	svc.apiURL = ts.URL
	return svc
}

func tiktokToken() map[string]interface{} {
	return map[string]interface{}{
		"access_token":  "tt-access",
		"refresh_token": "tt-refresh",
		"expires_in":    86400,
		"open_id":       "open-123",
		"scope":         "user.info.basic,video.publish",
	}
}

func TestTiktokExchangeReturnsUserInfo(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v2/oauth/token/":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "tt-key", r.Form.Get("client_key"))
			assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
			json.NewEncoder(w).Encode(tiktokToken())
		case "/v2/user/info/":
			assert.Equal(t, "Bearer tt-access", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]interface{}{
					"user": map[string]string{
						"open_id": "open-123", "display_name": "Acme Clips", "username": "acmeclips",
					},
				},
				"error": map[string]string{"code": "ok"},
			})
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	svc := newTestTiktokService(ts)
	result, err := svc.ExchangeCode(context.Background(), "auth-code")
	require.NoError(t, err)

	assert.Equal(t, models.PlatformTiktok, result.Platform)
	assert.Equal(t, "open-123", result.UserAccountID)
	assert.Equal(t, "Acme Clips", result.AccountName)
	assert.Equal(t, "acmeclips", result.Username)
	assert.Equal(t, "tt-refresh", result.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), result.ExpiresAt, 5*time.Second)
}

func TestTiktokExchangeFallsBackWhenUserInfoFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/oauth/token/" {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(tiktokToken())
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	svc := newTestTiktokService(ts)
	result, err := svc.ExchangeCode(context.Background(), "auth-code")
	require.NoError(t, err)

	assert.Equal(t, "TikTok Account (open-123)", result.AccountName)
	assert.Empty(t, result.Username)
}

func TestTiktokExchangeRejectsIncompleteToken(t *testing.T) {
	for _, missing := range []string{"access_token", "refresh_token", "expires_in", "open_id"} {
		t.Run(missing, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				token := tiktokToken()
				delete(token, missing)
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(token)
			}))
			defer ts.Close()

			svc := newTestTiktokService(ts)
			_, err := svc.ExchangeCode(context.Background(), "auth-code")
			require.Error(t, err)

			var exchangeErr *TokenExchangeError
			require.ErrorAs(t, err, &exchangeErr)
			assert.Contains(t, exchangeErr.Body, missing)
		})
	}
}

func TestTiktokExchangeSurfacesOAuthError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"error": "invalid_grant", "error_description": "Authorization code is expired.",
		})
	}))
	defer ts.Close()

	svc := newTestTiktokService(ts)
	_, err := svc.ExchangeCode(context.Background(), "stale-code")
	require.Error(t, err)

	var oauthErr *OAuthError
	require.ErrorAs(t, err, &oauthErr)
	assert.Equal(t, "invalid_grant", oauthErr.Code)
	assert.Contains(t, oauthErr.Description, "expired")
}

func TestTiktokRefreshToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "tt-refresh", r.Form.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(tiktokToken())
	}))
	defer ts.Close()

	svc := newTestTiktokService(ts)
	token, err := svc.RefreshToken(context.Background(), "tt-refresh")
	require.NoError(t, err)
	assert.Equal(t, "tt-access", token.AccessToken)
	assert.Equal(t, "open-123", token.OpenID)
}

func TestTiktokRevokeTokenFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusBadRequest)
	}))
	defer ts.Close()

	svc := newTestTiktokService(ts)
	err := svc.RevokeToken(context.Background(), "tt-access")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
