package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/anuragdev21/socialbridge/internal/service"
	"github.com/anuragdev21/socialbridge/internal/transfer"
)

type WebhookHandler struct {
	us service.UserService
}

func NewWebhookHandler(us service.UserService) *WebhookHandler {
	return &WebhookHandler{us: us}
}

// TiktokVerify answers TikTok's endpoint verification probe by echoing the
// challenge back. Probes arrive on the same path as the OAuth callback.
func (h *WebhookHandler) TiktokVerify(c *fiber.Ctx) error {
	if c.Query("hub.mode") == "subscribe" {
		return c.Status(fiber.StatusOK).SendString(c.Query("hub.challenge"))
	}
	return c.Status(fiber.StatusOK).Send(nil)
}

// IdentityWebhook mirrors user lifecycle events from the identity provider.
// The HMAC signature is checked against the raw body before parsing.
func (h *WebhookHandler) IdentityWebhook(c *fiber.Ctx) error {
	signature := c.Get("X-Webhook-Signature")
	if !h.us.VerifyWebhookSignature(c.Body(), signature) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid webhook signature",
		})
	}

	var event transfer.IdentityEvent
	if err := c.BodyParser(&event); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse event",
		})
	}

	if err := h.us.HandleIdentityEvent(c.Context(), &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
