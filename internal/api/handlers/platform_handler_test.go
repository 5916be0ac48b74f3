package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	config "github.com/anuragdev21/socialbridge/configs"
	"github.com/anuragdev21/socialbridge/internal/models"
	"github.com/anuragdev21/socialbridge/internal/service"
	"github.com/anuragdev21/socialbridge/internal/transfer"
	"github.com/anuragdev21/socialbridge/pkg/utils"
	"github.com/anuragdev21/socialbridge/views"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stateSecret = "state-signing-secret"

type stubExchanger struct {
	result    *transfer.ExchangeResult
	exchanged int
}

func (s *stubExchanger) ExchangeCode(ctx context.Context, code string) (*transfer.ExchangeResult, error) {
	s.exchanged++
	return s.result, nil
}

func (s *stubExchanger) RefreshToken(ctx context.Context, token string) (string, time.Time, error) {
	return "", time.Time{}, nil
}

func (s *stubExchanger) Publish(ctx context.Context, post *models.Post, account *models.MetaAccount, accessToken string) (*transfer.PublishResult, error) {
	return nil, nil
}

type stubLinkedin struct{}

func (stubLinkedin) ExchangeCode(ctx context.Context, code string) (*transfer.ExchangeResult, error) {
	return nil, nil
}
func (stubLinkedin) RefreshToken(ctx context.Context, refreshToken string) (string, string, time.Time, error) {
	return "", "", time.Time{}, nil
}
func (stubLinkedin) Publish(ctx context.Context, post *models.Post, account *models.LinkedinAccount, accessToken string) (*transfer.PublishResult, error) {
	return nil, nil
}

type stubPinterest struct{}

func (stubPinterest) ExchangeCode(ctx context.Context, code string) (*transfer.ExchangeResult, error) {
	return nil, nil
}
func (stubPinterest) RefreshToken(ctx context.Context, refreshToken string) (string, string, time.Time, error) {
	return "", "", time.Time{}, nil
}
func (stubPinterest) Publish(ctx context.Context, post *models.Post, account *models.PinterestAccount, accessToken string) (*transfer.PublishResult, error) {
	return nil, nil
}

type stubTiktok struct{}

func (stubTiktok) ExchangeCode(ctx context.Context, code string) (*transfer.ExchangeResult, error) {
	return nil, nil
}
func (stubTiktok) RefreshToken(ctx context.Context, refreshToken string) (*transfer.TiktokTokenResponse, error) {
	return nil, nil
}
func (stubTiktok) RevokeToken(ctx context.Context, accessToken string) error { return nil }
func (stubTiktok) Publish(ctx context.Context, post *models.Post, account *models.TiktokAccount, accessToken string) (*transfer.PublishResult, error) {
	return nil, nil
}

type stubFacebookExchanger struct {
	results []*transfer.ExchangeResult
}

func (s *stubFacebookExchanger) ExchangeCode(ctx context.Context, code string) ([]*transfer.ExchangeResult, error) {
	return s.results, nil
}

func (s *stubFacebookExchanger) Publish(ctx context.Context, post *models.Post, account *models.MetaAccount, accessToken string) (*transfer.PublishResult, error) {
	return nil, nil
}

type stubPlatformService struct{}

func (stubPlatformService) GetAuthURL(ctx context.Context, platform, tokenString string) (string, error) {
	return "https://example.com/consent?state=" + tokenString, nil
}
func (stubPlatformService) List(ctx context.Context, userID int64) (*transfer.AccountList, error) {
	return &transfer.AccountList{}, nil
}
func (stubPlatformService) Delete(ctx context.Context, userID int64, platform string, accountID int64) error {
	return nil
}

type stubReconciler struct {
	reconciled []*transfer.ExchangeResult
}

func (s *stubReconciler) Reconcile(ctx context.Context, userID int64, result *transfer.ExchangeResult) (int64, error) {
	s.reconciled = append(s.reconciled, result)
	return int64(len(s.reconciled)), nil
}

type callbackEnv struct {
	app        *fiber.App
	reconciler *stubReconciler
	threads    *stubExchanger
	facebook   *stubFacebookExchanger
}

func newCallbackEnv(t *testing.T) *callbackEnv {
	t.Helper()
	cfg := config.Config{SecretKey: stateSecret, FrontendURL: "https://app.example.com"}

	env := &callbackEnv{
		reconciler: &stubReconciler{},
		threads: &stubExchanger{result: &transfer.ExchangeResult{
			Platform: models.PlatformThreads, UserAccountID: "123", AccountName: "Acme", AccessToken: "tok",
		}},
		facebook: &stubFacebookExchanger{},
	}

	var th service.ThreadsService = env.threads
	h := NewPlatformHandler(stubPlatformService{}, env.reconciler, env.facebook,
		&stubExchanger{}, th, stubLinkedin{}, stubPinterest{}, stubTiktok{}, cfg)

	engine := html.NewFileSystem(http.FS(views.FS), ".html")
	env.app = fiber.New(fiber.Config{Views: engine})
	env.app.Get("/auth/:platform/callback", h.CallbackHandler)
	return env
}

func validState(t *testing.T, userID int64) string {
	t.Helper()
	state, err := utils.GenerateStateToken(stateSecret, strconv.FormatInt(userID, 10), 15*time.Minute)
	require.NoError(t, err)
	return state
}

func TestCallbackConsentErrorSkipsExchange(t *testing.T) {
	env := newCallbackEnv(t)

	req := httptest.NewRequest("GET", "/auth/threads/callback?error=access_denied&error_description=User+denied+access", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), transfer.MsgThreadsAccountError)
	assert.Contains(t, string(body), "User denied access")
	assert.Contains(t, string(body), "<button", "error popup must offer a close button")
	assert.Contains(t, string(body), "setTimeout", "popup must not close before the opener gets the message")

	assert.Zero(t, env.threads.exchanged, "consent errors must short-circuit the exchange")
	assert.Empty(t, env.reconciler.reconciled)
}

func TestCallbackRejectsInvalidState(t *testing.T) {
	env := newCallbackEnv(t)

	req := httptest.NewRequest("GET", "/auth/threads/callback?code=abc&state=forged-state", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), transfer.MsgThreadsAccountError)

	assert.Zero(t, env.threads.exchanged, "bad state must be rejected before the exchange")
	assert.Empty(t, env.reconciler.reconciled)
}

func TestCallbackMissingCode(t *testing.T) {
	env := newCallbackEnv(t)

	req := httptest.NewRequest("GET", "/auth/threads/callback?state="+validState(t, 7), nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Missing authorization code")
	assert.Zero(t, env.threads.exchanged)
}

func TestCallbackReconcilesAndRendersSuccess(t *testing.T) {
	env := newCallbackEnv(t)

	req := httptest.NewRequest("GET", "/auth/threads/callback?code=abc&state="+validState(t, 7), nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), transfer.MsgThreadsAccountConnected)
	assert.Contains(t, string(body), "https://app.example.com")
	assert.Contains(t, string(body), `"accountName":"Acme"`)
	assert.Contains(t, string(body), "setTimeout", "popup must not close before the opener gets the message")

	require.Len(t, env.reconciler.reconciled, 1)
	assert.Equal(t, "123", env.reconciler.reconciled[0].UserAccountID)
}

func TestCallbackFacebookPostsOneMessagePerPage(t *testing.T) {
	env := newCallbackEnv(t)
	env.facebook.results = []*transfer.ExchangeResult{
		{Platform: models.PlatformFacebook, UserAccountID: "page_1", PageID: "page_1", AccountName: "First", AccessToken: "t1"},
		{Platform: models.PlatformFacebook, UserAccountID: "page_2", PageID: "page_2", AccountName: "Second", AccessToken: "t2"},
	}

	req := httptest.NewRequest("GET", "/auth/facebook/callback?code=abc&state="+validState(t, 7), nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), transfer.MsgFacebookPageConnected)
	assert.Contains(t, string(body), `"pageId":"page_1"`)
	assert.Contains(t, string(body), `"pageId":"page_2"`)
	assert.Contains(t, string(body), "setTimeout", "popup must not close before the opener gets the message")

	assert.Len(t, env.reconciler.reconciled, 2)
}

func TestCallbackUnsupportedPlatform(t *testing.T) {
	env := newCallbackEnv(t)

	req := httptest.NewRequest("GET", "/auth/myspace/callback?code=abc", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestConnectedPayloadRoundTrip(t *testing.T) {
	cases := []struct {
		name        string
		result      *transfer.ExchangeResult
		accountType string
	}{
		{
			name: "facebook page",
			result: &transfer.ExchangeResult{
				Platform:      models.PlatformFacebook,
				UserAccountID: "fb_user_1",
				PageID:        "page_1",
				AccountName:   "Acme Page",
				AccessToken:   "page-token",
				Permissions:   []string{"pages_manage_posts"},
			},
			accountType: "page",
		},
		{
			name: "instagram business",
			result: &transfer.ExchangeResult{
				Platform:      models.PlatformInstagram,
				UserAccountID: "ig_1",
				AccountName:   "acme.ig",
				Username:      "acme.ig",
				AccessToken:   "ig-token",
				ExpiresAt:     time.Now().Add(60 * 24 * time.Hour),
			},
			accountType: "BUSINESS",
		},
		{
			name: "tiktok",
			result: &transfer.ExchangeResult{
				Platform:      models.PlatformTiktok,
				UserAccountID: "open-123",
				AccountName:   "Acme TikTok",
				AccessToken:   "tt-token",
			},
		},
		{
			name: "linkedin",
			result: &transfer.ExchangeResult{
				Platform:      models.PlatformLinkedin,
				UserAccountID: "li_1",
				AccountName:   "Jordan Smith",
				AccessToken:   "li-token",
			},
		},
		{
			name: "pinterest",
			result: &transfer.ExchangeResult{
				Platform:      models.PlatformPinterest,
				UserAccountID: "pin_1",
				AccountName:   "acmepins",
				AccessToken:   "pin-token",
			},
		},
		{
			name: "threads",
			result: &transfer.ExchangeResult{
				Platform:      models.PlatformThreads,
				UserAccountID: "th_1",
				AccountName:   "acme.threads",
				AccessToken:   "th-token",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := json.Marshal(connectedPayload(tc.result, "7"))
			require.NoError(t, err)

			// The dashboard listener depends on these exact keys being
			// present, so they may never be dropped as empty.
			var keys map[string]interface{}
			require.NoError(t, json.Unmarshal(encoded, &keys))
			for _, key := range []string{"accessToken", "accountName", "accountType", "userAccountId"} {
				assert.Contains(t, keys, key)
			}

			var decoded transfer.ConnectedPayload
			require.NoError(t, json.Unmarshal(encoded, &decoded))
			assert.Equal(t, tc.result.AccessToken, decoded.AccessToken)
			assert.Equal(t, tc.result.AccountName, decoded.AccountName)
			assert.Equal(t, tc.result.UserAccountID, decoded.UserAccountID)
			assert.Equal(t, tc.accountType, decoded.AccountType)

			again, err := json.Marshal(&decoded)
			require.NoError(t, err)
			assert.JSONEq(t, string(encoded), string(again))

			if tc.result.Platform == models.PlatformTiktok {
				assert.Equal(t, tc.result.UserAccountID, decoded.OpenID)
			}
			if tc.result.PageID != "" {
				assert.Equal(t, tc.result.PageID, decoded.PageID)
			}
		})
	}
}
