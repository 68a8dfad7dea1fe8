package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"dataroom/internal/domain"
	"dataroom/internal/domain/models"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

// GoogleIssuer is the OIDC issuer for Google accounts
const GoogleIssuer = "https://accounts.google.com"

// GoogleVerifier checks Google Sign-In ID tokens via OIDC discovery
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
	clientID string
}

// NewGoogleVerifier discovers Google's signing keys. clientID is the
// audience the ID token must be minted for.
func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, errors.New("google client ID cannot be empty")
	}
	provider, err := oidc.NewProvider(ctx, GoogleIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover google OIDC provider: %w", err)
	}
	return newGoogleVerifier(provider.Verifier(&oidc.Config{ClientID: clientID}), clientID), nil
}

func newGoogleVerifier(v *oidc.IDTokenVerifier, clientID string) *GoogleVerifier {
	return &GoogleVerifier{verifier: v, clientID: clientID}
}

func (g *GoogleVerifier) VerifyIDToken(ctx context.Context, rawIDToken string) (*models.GoogleProfile, error) {
	if rawIDToken == "" {
		return nil, ErrTokenMissing
	}

	token, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, g.classify(rawIDToken, err)
	}

	var profile models.GoogleProfile
	if err := token.Claims(&profile); err != nil {
		return nil, ErrInvalidClaims
	}
	if profile.Email == "" || !profile.EmailVerified {
		return nil, &domain.UnauthenticatedError{Reason: domain.AuthReasonInvalidClaims, Message: "google account email is not verified"}
	}
	return &profile, nil
}

// classify maps a go-oidc verification failure to a rejection reason.
// go-oidc only types expiry, so malformed tokens and foreign issuers or
// audiences are recognized from the unverified claims. Message matching is
// the last resort.
func (g *GoogleVerifier) classify(rawIDToken string, err error) error {
	var expired *oidc.TokenExpiredError
	if errors.As(err, &expired) {
		return ErrTokenExpired
	}

	var claims jwt.RegisteredClaims
	if _, _, parseErr := jwt.NewParser().ParseUnverified(rawIDToken, &claims); parseErr != nil {
		return ErrTokenMalformed
	}
	if claims.Issuer != GoogleIssuer || !slices.Contains(claims.Audience, g.clientID) {
		return ErrInvalidClaims
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "malformed jwt"):
		return ErrTokenMalformed
	case strings.Contains(msg, "expected audience"), strings.Contains(msg, "id token issued by a different provider"):
		return ErrInvalidClaims
	default:
		return ErrUnknownSigner
	}
}
