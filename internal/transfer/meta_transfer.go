package transfer

// GraphErrorResponse is the error envelope the Meta graph APIs (Facebook,
// Instagram, Threads) embed in response bodies, sometimes with HTTP 200.
type GraphErrorResponse struct {
	Error *GraphError `json:"error"`
}

type GraphError struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode"`
	FbtraceID    string `json:"fbtrace_id"`
}

type FacebookPage struct {
	ID                       string               `json:"id"`
	Name                     string               `json:"name"`
	AccessToken              string               `json:"access_token"`
	Tasks                    []string             `json:"tasks"`
	InstagramBusinessAccount *InstagramSubProfile `json:"instagram_business_account,omitempty"`
}

type FacebookPagesResponse struct {
	Data []FacebookPage `json:"data"`
}

type InstagramTokenResponse struct {
	AccessToken string `json:"access_token"`
	UserID      int64  `json:"user_id"`
}

type InstagramLongLivedTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type InstagramProfile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	AccountType string `json:"account_type"`
	MediaCount  int    `json:"media_count"`
}

type ThreadsTokenResponse struct {
	AccessToken string `json:"access_token"`
	UserID      int64  `json:"user_id"`
	ExpiresIn   int64  `json:"expires_in"`
}

type ThreadsProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}
