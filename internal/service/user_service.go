package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	config "github.com/anuragdev21/socialbridge/configs"
	"github.com/anuragdev21/socialbridge/internal/models"
	"github.com/anuragdev21/socialbridge/internal/repository"
	"github.com/anuragdev21/socialbridge/internal/transfer"
)

type UserService interface {
	GetUserInfo(ctx context.Context, id int64) (*models.User, error)
	HandleIdentityEvent(ctx context.Context, event *transfer.IdentityEvent) error
	VerifyWebhookSignature(body []byte, signature string) bool
}

type userService struct {
	cfg config.Config
	u   repository.UserRepository
}

func NewUserService(cfg config.Config, u repository.UserRepository) UserService {
	return &userService{
		cfg: cfg,
		u:   u,
	}
}

func (s *userService) GetUserInfo(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.u.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting user info: %w", err)
	}

	if user == nil {
		err = errors.New("User not found")
		slog.Info(err.Error())
		return nil, err
	}

	return user, nil
}

// HandleIdentityEvent mirrors user lifecycle events from the external
// identity provider into the local users table.
func (s *userService) HandleIdentityEvent(ctx context.Context, event *transfer.IdentityEvent) error {
	if event == nil || event.Data.ID == "" {
		err := errors.New("identity event has no user id")
		slog.Info(err.Error())
		return err
	}

	switch event.Type {
	case "user.created", "user.updated":
		user := &models.User{
			ExternalID:     event.Data.ID,
			Email:          event.Data.Email,
			Name:           event.Data.Name,
			ProfilePicture: event.Data.ProfilePicture,
		}
		_, err := s.u.Upsert(ctx, user)
		return err

	case "user.deleted":
		return s.u.Remove(ctx, event.Data.ID)
	}

	slog.Info("ignoring identity event", "type", event.Type)
	return nil
}

// VerifyWebhookSignature checks the hex HMAC-SHA256 the identity provider
// sends with each webhook delivery.
func (s *userService) VerifyWebhookSignature(body []byte, signature string) bool {
	if s.cfg.WebhookSecret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(s.cfg.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
