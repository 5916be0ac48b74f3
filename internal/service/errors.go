package service

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound     = errors.New("social account not found")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrPostNotFound        = errors.New("post not found")
	ErrEmptyPost           = errors.New("post needs content or media")
	ErrInvalidTransition   = errors.New("invalid post status transition")
)

// OAuthError is the error reported by a provider's consent screen through the
// callback query string, before any token exchange takes place.
type OAuthError struct {
	Code        string
	Description string
}

func (e *OAuthError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("oauth error %s: %s", e.Code, e.Description)
	}
	return fmt.Sprintf("oauth error %s", e.Code)
}

// TokenExchangeError carries the provider response body for a failed code or
// refresh-token exchange.
type TokenExchangeError struct {
	Platform   string
	StatusCode int
	Body       string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("%s token exchange failed with status %d: %s", e.Platform, e.StatusCode, e.Body)
}

// UnsupportedAccountTypeError marks a connected account rejected because the
// provider reports it as a personal account rather than a business one.
type UnsupportedAccountTypeError struct {
	AccountType string
}

func (e *UnsupportedAccountTypeError) Error() string {
	return fmt.Sprintf("account type %q is not supported, a business account is required", e.AccountType)
}

type PublishError struct {
	Platform   string
	Message    string
	StatusCode int
}

func (e *PublishError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s publish failed (status %d): %s", e.Platform, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s publish failed: %s", e.Platform, e.Message)
}
