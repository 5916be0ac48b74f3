package transfer

// LinkedinIdentityClaims are the OpenID claims carried in the id_token that
// LinkedIn may return alongside the access token.
type LinkedinIdentityClaims struct {
	Sub        string `json:"sub"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
	Picture    string `json:"picture"`
}

// LinkedinProfile is the fallback /v2/me projection used when no id_token is
// present.
type LinkedinProfile struct {
	ID                 string `json:"id"`
	LocalizedFirstName string `json:"localizedFirstName"`
	LocalizedLastName  string `json:"localizedLastName"`
}
