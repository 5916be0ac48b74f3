package transfer

import "time"

// ExchangeResult is the normalized outcome of a platform token exchange.
// Platform-specific field names never leave the exchanger that produced it;
// the account reconciler consumes this shape for every platform.
type ExchangeResult struct {
	Platform      string
	UserAccountID string
	PageID        string
	AccountName   string
	Username      string
	AccessToken   string
	RefreshToken  string
	ExpiresAt     time.Time
	Permissions   []string
	Instagram     *InstagramSubProfile
}

// InstagramSubProfile is the Instagram business account attached to a
// Facebook page, when the page has one.
type InstagramSubProfile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture_url,omitempty"`
}

// PublishResult is what every platform publisher and the dispatcher return.
// Callers never need error handling; failures are carried in Error.
type PublishResult struct {
	Success        bool   `json:"success"`
	PlatformPostID string `json:"platformPostId,omitempty"`
	Error          string `json:"error,omitempty"`
}

// ConnectedPayload is the data object posted to the popup opener via
// window.opener.postMessage on a successful connect. Field names are part of
// the frontend contract and must not change.
type ConnectedPayload struct {
	AccessToken   string   `json:"accessToken"`
	AccountName   string   `json:"accountName"`
	AccountType   string   `json:"accountType"`
	UserAccountID string   `json:"userAccountId"`
	PageID        string   `json:"pageId,omitempty"`
	Username      string   `json:"username,omitempty"`
	UserID        string   `json:"userId,omitempty"`
	OpenID        string   `json:"openId,omitempty"`
	Permissions   []string `json:"permissions,omitempty"`
	ExpiresAt     string   `json:"expiresAt,omitempty"`
	LinkedAt      int64    `json:"linkedAt,omitempty"`
}

// Popup postMessage type strings. The dashboard's message listeners key on
// these verbatim.
const (
	MsgFacebookPageConnected     = "FACEBOOK_PAGE_CONNECTED"
	MsgFacebookPageError         = "FACEBOOK_PAGE_ERROR"
	MsgInstagramAccountConnected = "INSTAGRAM_ACCOUNT_CONNECTED"
	MsgInstagramAccountError     = "INSTAGRAM_ACCOUNT_ERROR"
	MsgLinkedinAccountConnected  = "LINKEDIN_ACCOUNT_CONNECTED"
	MsgLinkedinAccountError      = "LINKEDIN_ACCOUNT_ERROR"
	MsgThreadsAccountConnected   = "THREADS_ACCOUNT_CONNECTED"
	MsgThreadsAccountError       = "THREADS_ACCOUNT_ERROR"
	MsgPinterestAccountConnected = "PINTEREST_ACCOUNT_CONNECTED"
	MsgPinterestAccountError     = "PINTEREST_ACCOUNT_ERROR"
	MsgTiktokAccountConnected    = "TIKTOK_ACCOUNT_CONNECTED"
	MsgTiktokConnectionError     = "TIKTOK_CONNECTION_ERROR"
)

// ConnectedMessageType returns the success postMessage type for a platform.
func ConnectedMessageType(platform string) string {
	switch platform {
	case "facebook":
		return MsgFacebookPageConnected
	case "instagram":
		return MsgInstagramAccountConnected
	case "linkedin":
		return MsgLinkedinAccountConnected
	case "threads":
		return MsgThreadsAccountConnected
	case "pinterest":
		return MsgPinterestAccountConnected
	case "tiktok":
		return MsgTiktokAccountConnected
	}
	return ""
}

// ErrorMessageType returns the failure postMessage type for a platform.
func ErrorMessageType(platform string) string {
	switch platform {
	case "facebook":
		return MsgFacebookPageError
	case "instagram":
		return MsgInstagramAccountError
	case "linkedin":
		return MsgLinkedinAccountError
	case "threads":
		return MsgThreadsAccountError
	case "pinterest":
		return MsgPinterestAccountError
	case "tiktok":
		return MsgTiktokConnectionError
	}
	return ""
}
