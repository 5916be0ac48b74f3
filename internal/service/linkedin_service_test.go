package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	config "github.com/anuragdev21/socialbridge/configs"
	"github.com/anuragdev21/socialbridge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestLinkedinService(ts *httptest.Server) *linkedinService {
	svc := NewLinkedinService(config.Config{
		LinkedinClientID:     "li-client",
		LinkedinClientSecret: "li-secret",
		LinkedinRedirectURI:  "http://localhost/auth/linkedin/callback",
	})
	svc.httpClient = ts.Client()
	svc.apiURL = ts.URL
	svc.oauthConfig.Endpoint = oauth2.Endpoint{
		AuthURL:   ts.URL + "/oauth/v2/authorization",
		TokenURL:  ts.URL + "/oauth/v2/accessToken",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	return svc
}

func buildIDToken(t *testing.T, claims map[string]string) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func TestLinkedinExchangeUsesIDTokenClaims(t *testing.T) {
	profileCalled := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v2/accessToken":
			idToken := buildIDToken(t, map[string]string{
				"sub": "li-sub-1", "name": "Jordan Example", "email": "jordan@example.com",
			})
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "li-access", "expires_in": 5184000, "id_token": idToken,
			})
		case "/v2/me":
			profileCalled = true
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"id": "li-sub-1"})
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	svc := newTestLinkedinService(ts)
	result, err := svc.ExchangeCode(context.Background(), "auth-code")
	require.NoError(t, err)

	assert.Equal(t, models.PlatformLinkedin, result.Platform)
	assert.Equal(t, "li-sub-1", result.UserAccountID)
	assert.Equal(t, "Jordan Example", result.AccountName)
	assert.Equal(t, "jordan@example.com", result.Username)
	assert.Equal(t, "li-access", result.AccessToken)
	assert.False(t, profileCalled, "id_token claims should make the profile call unnecessary")
}

func TestLinkedinExchangeFallsBackToProfileEndpoint(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/oauth/v2/accessToken":
			json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "li-access", "expires_in": 5184000})
		case "/v2/me":
			assert.Equal(t, "Bearer li-access", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]string{
				"id": "li-id-2", "localizedFirstName": "Sam", "localizedLastName": "Taylor",
			})
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	svc := newTestLinkedinService(ts)
	result, err := svc.ExchangeCode(context.Background(), "auth-code")
	require.NoError(t, err)

	assert.Equal(t, "li-id-2", result.UserAccountID)
	assert.Equal(t, "Sam Taylor", result.AccountName)
}

func TestLinkedinExchangeBadCode(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	svc := newTestLinkedinService(ts)
	_, err := svc.ExchangeCode(context.Background(), "bad-code")
	require.Error(t, err)

	var exchangeErr *TokenExchangeError
	require.ErrorAs(t, err, &exchangeErr)
}

func TestDecodeIdentityClaims(t *testing.T) {
	t.Run("malformed token", func(t *testing.T) {
		assert.Nil(t, decodeIdentityClaims(""))
		assert.Nil(t, decodeIdentityClaims("only.two"))
		assert.Nil(t, decodeIdentityClaims("a.%%%.c"))
	})

	t.Run("name assembled from parts", func(t *testing.T) {
		payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"s1","given_name":"Ada","family_name":"Lovelace"}`))
		claims := decodeIdentityClaims("h." + payload + ".s")
		require.NotNil(t, claims)
		assert.Equal(t, "s1", claims.Sub)
		assert.Equal(t, "Ada", claims.GivenName)
		assert.Equal(t, "Lovelace", claims.FamilyName)
	})
}
