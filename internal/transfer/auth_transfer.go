package transfer

import "github.com/golang-jwt/jwt/v5"

type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// ConnectClaims travel through the OAuth state parameter so the callback can
// recover who started the connect flow without server-side state.
type ConnectClaims struct {
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
	jwt.RegisteredClaims
}

type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}
