package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anuragdev21/socialbridge/internal/transfer"
)

// GetExpiresAt converts a provider expires_in (seconds) into an absolute time.
// A zero or negative value means the token does not expire.
func GetExpiresAt(expiresIn int64) time.Time {
	if expiresIn <= 0 {
		return time.Time{}
	}
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}

// decodeGraphResponse decodes a Meta Graph API response into out. Graph
// sometimes returns HTTP 200 with an error object in the body, so the error
// field is checked regardless of status code.
func decodeGraphResponse(platform string, resp *http.Response, out interface{}) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	var graphErr transfer.GraphErrorResponse
	if err := json.Unmarshal(body, &graphErr); err == nil && graphErr.Error != nil {
		return &TokenExchangeError{Platform: platform, StatusCode: resp.StatusCode, Body: graphErr.Error.Message}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TokenExchangeError{Platform: platform, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("failed to decode %s response: %w", platform, err)
	}
	return nil
}

func getJSON(ctx context.Context, client *http.Client, platform, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	return decodeGraphResponse(platform, resp, out)
}

func postForm(ctx context.Context, client *http.Client, platform, rawURL string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	return decodeGraphResponse(platform, resp, out)
}

// retryWithBackoff retries fn with a short exponential backoff. Only used for
// idempotent reads; token exchanges are never retried because an authorization
// code burns on first use.
func retryWithBackoff(ctx context.Context, attempts int, fn func() error) error {
	var err error
	delay := 500 * time.Millisecond
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

// asPublishError reflavors a Graph transport error raised while publishing.
// decodeGraphResponse reports failures as token-exchange errors, which is the
// wrong label once a post is being pushed rather than a code being exchanged.
func asPublishError(platform string, err error) error {
	if err == nil {
		return nil
	}
	var exchErr *TokenExchangeError
	if errors.As(err, &exchErr) {
		return &PublishError{Platform: platform, Message: exchErr.Body, StatusCode: exchErr.StatusCode}
	}
	return err
}

func isVideoURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, ext := range []string{".mp4", ".mov", ".avi", ".webm", ".mkv", ".m4v"} {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func postJSON(ctx context.Context, client *http.Client, platform, rawURL string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	return decodeGraphResponse(platform, resp, out)
}
