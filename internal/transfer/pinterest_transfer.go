package transfer

type PinterestTokenResponse struct {
	AccessToken   string `json:"access_token"`
	RefreshToken  string `json:"refresh_token"`
	TokenType     string `json:"token_type"`
	ExpiresIn     int64  `json:"expires_in"`
	Scope         string `json:"scope"`
}

type PinterestUserAccount struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	BusinessName    string `json:"business_name"`
	AccountType     string `json:"account_type"`
	ProfileImage    string `json:"profile_image"`
	WebsiteURL      string `json:"website_url"`
}

type PinterestErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
