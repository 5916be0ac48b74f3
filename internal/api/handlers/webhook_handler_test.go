package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	config "github.com/anuragdev21/socialbridge/configs"
	"github.com/anuragdev21/socialbridge/internal/models"
	"github.com/anuragdev21/socialbridge/internal/service"
	"github.com/anuragdev21/socialbridge/internal/transfer"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "hook-secret"

type stubUserService struct {
	inner  service.UserService
	events []*transfer.IdentityEvent
}

func (s *stubUserService) GetUserInfo(ctx context.Context, id int64) (*models.User, error) {
	return nil, nil
}

func (s *stubUserService) HandleIdentityEvent(ctx context.Context, event *transfer.IdentityEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *stubUserService) VerifyWebhookSignature(body []byte, signature string) bool {
	return s.inner.VerifyWebhookSignature(body, signature)
}

func newWebhookApp() (*fiber.App, *stubUserService) {
	us := &stubUserService{
		inner: service.NewUserService(config.Config{WebhookSecret: webhookSecret}, nil),
	}
	h := NewWebhookHandler(us)

	app := fiber.New()
	app.Get("/auth/tiktok/verify", h.TiktokVerify)
	app.Post("/webhooks/identity", h.IdentityWebhook)
	return app, us
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestTiktokVerifyEchoesChallenge(t *testing.T) {
	app, _ := newWebhookApp()

	req := httptest.NewRequest("GET", "/auth/tiktok/verify?hub.mode=subscribe&hub.challenge=abc123", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "abc123", string(body))
}

func TestTiktokVerifyIgnoresOtherModes(t *testing.T) {
	app, _ := newWebhookApp()

	req := httptest.NewRequest("GET", "/auth/tiktok/verify", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, string(body))
}

func TestIdentityWebhookAcceptsSignedEvent(t *testing.T) {
	app, us := newWebhookApp()

	body := `{"type":"user.created","data":{"id":"ext-1","email":"a@example.com","name":"A"}}`
	req := httptest.NewRequest("POST", "/webhooks/identity", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", sign(body))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Len(t, us.events, 1)
	assert.Equal(t, "user.created", us.events[0].Type)
	assert.Equal(t, "ext-1", us.events[0].Data.ID)
}

func TestIdentityWebhookRejectsBadSignature(t *testing.T) {
	app, us := newWebhookApp()

	body := `{"type":"user.created","data":{"id":"ext-1"}}`
	req := httptest.NewRequest("POST", "/webhooks/identity", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", sign(body+"tampered"))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, us.events)
}

func TestIdentityWebhookRejectsMissingSignature(t *testing.T) {
	app, us := newWebhookApp()

	body := `{"type":"user.deleted","data":{"id":"ext-1"}}`
	req := httptest.NewRequest("POST", "/webhooks/identity", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, us.events)
}
