package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"dataroom/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// ProviderJWTVerifier verifies tokens minted by the hosted auth provider
// (Supabase) against its published JWKS.
type ProviderJWTVerifier struct {
	jwks   keyfunc.Keyfunc
	issuer string
	logger *slog.Logger
}

// NewProviderJWTVerifier creates a verifier that fetches public keys from the provider's JWKS endpoint.
// The JWKS keys are cached and automatically refreshed based on HTTP cache headers.
func NewProviderJWTVerifier(ctx context.Context, providerURL, jwksURL string, logger *slog.Logger) (*ProviderJWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("provider JWT verifier initialized", "jwks_url", jwksURL)
	return newProviderJWTVerifier(jwks, ProviderIssuer(providerURL), logger), nil
}

func newProviderJWTVerifier(jwks keyfunc.Keyfunc, issuer string, logger *slog.Logger) *ProviderJWTVerifier {
	return &ProviderJWTVerifier{jwks: jwks, issuer: issuer, logger: logger}
}

// ProviderIssuer is the iss claim Supabase stamps on its tokens
func ProviderIssuer(providerURL string) string {
	return strings.TrimRight(providerURL, "/") + "/auth/v1"
}

// Issuer returns the iss claim this verifier accepts
func (v *ProviderJWTVerifier) Issuer() string { return v.issuer }

func (v *ProviderJWTVerifier) VerifyToken(ctx context.Context, tokenString string) (*models.Identity, error) {
	if tokenString == "" {
		return nil, ErrTokenMissing
	}

	claims := &models.ProviderClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, v.jwks.Keyfunc,
		// Prevent algorithm confusion attacks - allow only RS256 or ES256
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		rejection := classifyParseError(err)
		v.logger.Debug("provider token rejected", "reason", rejection.Error(), "error", err)
		return nil, rejection
	}

	if claims.Subject == "" {
		return nil, ErrInvalidClaims
	}
	// Reject anonymous sessions
	if claims.Role != "authenticated" || claims.IsAnonymous {
		v.logger.Debug("provider token has invalid role", "role", claims.Role, "user_id", claims.Subject)
		return nil, ErrInvalidClaims
	}

	return &models.Identity{
		UserID:   claims.Subject,
		Email:    claims.Email,
		Name:     claims.DisplayName(),
		External: true,
	}, nil
}

// Close is a no-op: keyfunc v3 manages its own refresh goroutine lifetime
// through the context passed at construction.
func (v *ProviderJWTVerifier) Close() error {
	v.logger.Info("provider JWT verifier closed")
	return nil
}
