package auth

import (
	"context"

	"dataroom/internal/domain"
	"dataroom/internal/domain/models"
)

// TokenVerifier defines the interface for bearer token verification.
// This abstraction allows for different JWT verification implementations
// while keeping the middleware agnostic to the verification details.
type TokenVerifier interface {
	// VerifyToken validates a token and returns the caller it identifies.
	// Every failure is a *domain.UnauthenticatedError carrying the reason.
	VerifyToken(ctx context.Context, tokenString string) (*models.Identity, error)

	// Close releases any resources held by the verifier (e.g., HTTP connections for JWKS).
	Close() error
}

// TokenIssuer signs session tokens for signed-in users
type TokenIssuer interface {
	IssueToken(user *models.User) (string, error)
}

// IDTokenVerifier verifies an identity provider's ID token presented at sign-in
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, rawIDToken string) (*models.GoogleProfile, error)
}

// Rejections returned by verifiers. All of them match domain.ErrUnauthenticated.
var (
	ErrTokenMissing   = &domain.UnauthenticatedError{Reason: domain.AuthReasonMissing, Message: "authentication required"}
	ErrTokenMalformed = &domain.UnauthenticatedError{Reason: domain.AuthReasonMalformed, Message: "malformed token"}
	ErrTokenExpired   = &domain.UnauthenticatedError{Reason: domain.AuthReasonExpired, Message: "token has expired"}
	ErrUnknownSigner  = &domain.UnauthenticatedError{Reason: domain.AuthReasonUnknownSigner, Message: "token signer is not trusted"}
	ErrInvalidClaims  = &domain.UnauthenticatedError{Reason: domain.AuthReasonInvalidClaims, Message: "token claims are invalid"}
)
