package transfer

import "github.com/golang-jwt/jwt/v5"

// CustomClaims back both the session cookie and the OAuth state parameter.
// Nonce is the per-connect-attempt correlation id carried through the popup
// flow; state validation compares it against what the client stored.
type CustomClaims struct {
	UserID string `json:"user_id"`
	Nonce  string `json:"nonce,omitempty"`
	jwt.RegisteredClaims
}
