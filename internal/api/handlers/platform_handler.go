package handlers

import (
	"encoding/json"
	"html/template"
	"log"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/anuragdev21/socialbridge/configs"
	"github.com/anuragdev21/socialbridge/internal/models"
	"github.com/anuragdev21/socialbridge/internal/service"
	"github.com/anuragdev21/socialbridge/internal/transfer"
	"github.com/anuragdev21/socialbridge/pkg/utils"
)

type PlatformHandler struct {
	ps  service.PlatformService
	rs  service.ReconcilerService
	fb  service.FacebookService
	ig  service.InstagramService
	th  service.ThreadsService
	li  service.LinkedinService
	pin service.PinterestService
	tt  service.TiktokService
	cfg config.Config
}

func NewPlatformHandler(
	ps service.PlatformService,
	rs service.ReconcilerService,
	fb service.FacebookService,
	ig service.InstagramService,
	th service.ThreadsService,
	li service.LinkedinService,
	pin service.PinterestService,
	tt service.TiktokService,
	cfg config.Config) *PlatformHandler {
	return &PlatformHandler{
		ps:  ps,
		rs:  rs,
		fb:  fb,
		ig:  ig,
		th:  th,
		li:  li,
		pin: pin,
		tt:  tt,
		cfg: cfg,
	}
}

// AddSocialAccount redirects the popup to the platform's consent screen with
// a signed state token identifying the user.
func (h *PlatformHandler) AddSocialAccount(c *fiber.Ctx) error {
	platform := c.Params("platform")
	if !models.IsSupportedPlatform(platform) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported platform",
		})
	}

	userID := GetUserID(c)
	tokenString, err := utils.GenerateStateToken(h.cfg.SecretKey, strconv.FormatInt(userID, 10), 15*time.Minute)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to start connection",
		})
	}

	authURL, err := h.ps.GetAuthURL(c.Context(), platform, tokenString)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Redirect(authURL)
}

// CallbackHandler finishes the OAuth popup flow. Every outcome renders a
// small page that posts a message to the opener window and closes itself;
// the consent-screen error is checked before anything else so a denied grant
// never reaches the token exchange.
func (h *PlatformHandler) CallbackHandler(c *fiber.Ctx) error {
	platform := c.Params("platform")
	if !models.IsSupportedPlatform(platform) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported platform",
		})
	}

	if oauthErr := c.Query("error"); oauthErr != "" {
		description := c.Query("error_description")
		if description == "" {
			description = oauthErr
		}
		return h.renderError(c, platform, description)
	}

	state := c.Query("state")
	claims, err := utils.ValidateToken(h.cfg.SecretKey, state)
	if err != nil {
		slog.Info(err.Error())
		return h.renderError(c, platform, "Unable to validate the connection request")
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		slog.Info(err.Error())
		return h.renderError(c, platform, "Unable to validate the connection request")
	}

	code := c.Query("code")
	if code == "" {
		return h.renderError(c, platform, "Missing authorization code")
	}

	if platform == models.PlatformFacebook {
		return h.handleFacebookCallback(c, userID, code)
	}

	var result *transfer.ExchangeResult
	switch platform {
	case models.PlatformInstagram:
		result, err = h.ig.ExchangeCode(c.Context(), code)
	case models.PlatformThreads:
		result, err = h.th.ExchangeCode(c.Context(), code)
	case models.PlatformLinkedin:
		result, err = h.li.ExchangeCode(c.Context(), code)
	case models.PlatformPinterest:
		result, err = h.pin.ExchangeCode(c.Context(), code)
	case models.PlatformTiktok:
		result, err = h.tt.ExchangeCode(c.Context(), code)
	}
	if err != nil {
		slog.Info(err.Error())
		return h.renderError(c, platform, err.Error())
	}

	if _, err := h.rs.Reconcile(c.Context(), userID, result); err != nil {
		slog.Info(err.Error())
		return h.renderError(c, platform, "Unable to save the connected account")
	}

	return h.renderSuccess(c, platform, connectedPayload(result, claims.UserID))
}

// handleFacebookCallback reconciles every granted page and posts one message
// per page to the opener.
func (h *PlatformHandler) handleFacebookCallback(c *fiber.Ctx, userID int64, code string) error {
	results, err := h.fb.ExchangeCode(c.Context(), code)
	if err != nil {
		slog.Info(err.Error())
		return h.renderError(c, models.PlatformFacebook, err.Error())
	}

	payloads := make([]*transfer.ConnectedPayload, 0, len(results))
	for _, result := range results {
		if _, err := h.rs.Reconcile(c.Context(), userID, result); err != nil {
			slog.Info(err.Error())
			return h.renderError(c, models.PlatformFacebook, "Unable to save the connected account")
		}
		payloads = append(payloads, connectedPayload(result, strconv.FormatInt(userID, 10)))
	}

	encoded, err := json.Marshal(payloads)
	if err != nil {
		slog.Info(err.Error())
		return h.renderError(c, models.PlatformFacebook, "Unable to save the connected account")
	}

	return c.Render("popup_facebook", fiber.Map{
		"Type":     transfer.MsgFacebookPageConnected,
		"Payloads": template.JS(encoded),
		"Origin":   h.cfg.FrontendURL,
	})
}

func connectedPayload(result *transfer.ExchangeResult, userID string) *transfer.ConnectedPayload {
	payload := &transfer.ConnectedPayload{
		AccessToken:   result.AccessToken,
		AccountName:   result.AccountName,
		UserAccountID: result.UserAccountID,
		PageID:        result.PageID,
		Username:      result.Username,
		UserID:        userID,
		Permissions:   result.Permissions,
		LinkedAt:      time.Now().UnixMilli(),
	}
	if !result.ExpiresAt.IsZero() {
		payload.ExpiresAt = result.ExpiresAt.Format(time.RFC3339)
	}
	switch result.Platform {
	case models.PlatformFacebook:
		payload.AccountType = "page"
	case models.PlatformInstagram:
		payload.AccountType = "BUSINESS"
	case models.PlatformTiktok:
		payload.OpenID = result.UserAccountID
	}
	return payload
}

func (h *PlatformHandler) renderSuccess(c *fiber.Ctx, platform string, payload *transfer.ConnectedPayload) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		slog.Info(err.Error())
		return h.renderError(c, platform, "Unable to save the connected account")
	}

	return c.Render("popup_success", fiber.Map{
		"Type":    transfer.ConnectedMessageType(platform),
		"Payload": template.JS(encoded),
		"Origin":  h.cfg.FrontendURL,
	})
}

func (h *PlatformHandler) renderError(c *fiber.Ctx, platform, message string) error {
	return c.Render("popup_error", fiber.Map{
		"Type":   transfer.ErrorMessageType(platform),
		"Error":  message,
		"Origin": h.cfg.FrontendURL,
	})
}

func (h *PlatformHandler) ListSocialAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	accountList, err := h.ps.List(c.Context(), userID)
	if err != nil {
		log.Println(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch social accounts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(accountList)
}

func (h *PlatformHandler) DeleteSocialAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	platform := c.Query("platform")
	accountID := c.QueryInt("id", 0)

	err := h.ps.Delete(c.Context(), userID, platform, int64(accountID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to delete social account",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
