package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the claims of a token issued by this service.
type SessionClaims struct {
	jwt.RegisteredClaims        // sub carries the user ID
	Email                string `json:"email,omitempty"`
}

// ProviderClaims represents the JWT claims structure of an external
// identity provider (Supabase Auth).
// See: https://supabase.com/docs/guides/auth/jwts
type ProviderClaims struct {
	jwt.RegisteredClaims                        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string                 `json:"email"`
	UserMetadata         map[string]interface{} `json:"user_metadata"`
	Role                 string                 `json:"role"` // "authenticated" or "anon"
	SessionID            string                 `json:"session_id"`
	IsAnonymous          bool                   `json:"is_anonymous"`
}

// DisplayName returns the provider's full name claim if present.
func (c *ProviderClaims) DisplayName() string {
	for _, key := range []string{"full_name", "name"} {
		if v, ok := c.UserMetadata[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Identity is the verified caller extracted from a bearer token.
type Identity struct {
	UserID string
	Email  string
	Name   string
	// External is true for provider-issued tokens whose subject may not
	// have a local user row yet.
	External bool
}

// GoogleProfile is the subset of a verified Google ID token we use.
type GoogleProfile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}
