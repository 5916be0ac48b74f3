package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

const (
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformLinkedin  = "linkedin"
	PlatformThreads   = "threads"
	PlatformPinterest = "pinterest"
	PlatformTiktok    = "tiktok"
)

// IsMetaPlatform reports whether accounts for the platform live in the
// meta_accounts table (Facebook pages, Instagram business accounts, Threads).
func IsMetaPlatform(platform string) bool {
	switch platform {
	case PlatformFacebook, PlatformInstagram, PlatformThreads:
		return true
	}
	return false
}

func IsSupportedPlatform(platform string) bool {
	switch platform {
	case PlatformFacebook, PlatformInstagram, PlatformLinkedin,
		PlatformThreads, PlatformPinterest, PlatformTiktok:
		return true
	}
	return false
}

// InstagramSubAccount is the Instagram business account linked to a Facebook
// page. Stored as a jsonb column on meta_accounts.
type InstagramSubAccount struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture_url,omitempty"`
}

func (a *InstagramSubAccount) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *InstagramSubAccount) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return errors.New("instagram sub-account column is not jsonb")
	}
	return json.Unmarshal(b, a)
}

// MetaAccount covers the Facebook/Instagram/Threads family. For Facebook the
// row is a managed Page; for Instagram a business account; for Threads the
// user's Threads profile.
type MetaAccount struct {
	ID               int64                `db:"id" json:"id"`
	UserID           int64                `db:"user_id" json:"user_id"`
	Platform         string               `db:"platform" json:"platform"`
	PageID           string               `db:"page_id" json:"page_id"`
	UserAccountID    string               `db:"user_account_id" json:"user_account_id"`
	AccountName      string               `db:"account_name" json:"account_name"`
	Username         string               `db:"account_username" json:"account_username"`
	Permissions      []string             `db:"page_permissions" json:"page_permissions"`
	IGBusinessID     string               `db:"ig_business_id" json:"ig_business_id"`
	InstagramAccount *InstagramSubAccount `db:"instagram_account" json:"instagram_account,omitempty"`
	AccessToken      string               `db:"access_token" json:"-"`
	RefreshToken     string               `db:"refresh_token" json:"-"`
	TokenExpiresAt   time.Time            `db:"token_expires_at" json:"token_expires_at"`
	CreatedAt        time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time            `db:"updated_at" json:"updated_at"`
}

type LinkedinAccount struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	UserAccountID string    `db:"user_account_id" json:"user_account_id"`
	AccountName   string    `db:"account_name" json:"account_name"`
	AccessToken   string    `db:"access_token" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

type PinterestAccount struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	UserAccountID  string    `db:"user_account_id" json:"user_account_id"`
	AccountName    string    `db:"account_name" json:"account_name"`
	Username       string    `db:"account_username" json:"account_username"`
	AccessToken    string    `db:"access_token" json:"-"`
	RefreshToken   string    `db:"refresh_token" json:"-"`
	TokenExpiresAt time.Time `db:"token_expires_at" json:"token_expires_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type TiktokAccount struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	OpenID         string    `db:"open_id" json:"open_id"`
	AccountName    string    `db:"account_name" json:"account_name"`
	AccessToken    string    `db:"access_token" json:"-"`
	RefreshToken   string    `db:"refresh_token" json:"-"`
	TokenExpiresAt time.Time `db:"token_expires_at" json:"token_expires_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// UserAccountIndex is the denormalized per-user list of connected account
// rows, one array column per platform family. Appends happen through an
// atomic array_append so concurrent reconciliations cannot drop entries.
type UserAccountIndex struct {
	UserID            int64   `db:"user_id" json:"user_id"`
	MetaAccounts      []int64 `db:"meta_accounts" json:"meta_accounts"`
	LinkedinAccounts  []int64 `db:"linkedin_accounts" json:"linkedin_accounts"`
	PinterestAccounts []int64 `db:"pinterest_accounts" json:"pinterest_accounts"`
	TiktokAccounts    []int64 `db:"tiktok_accounts" json:"tiktok_accounts"`
	UpdatedAt         time.Time
}
