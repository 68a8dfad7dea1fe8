package services

import (
	"context"

	"dataroom/internal/domain/models"
)

// IdentityService signs users in and resolves the current user
type IdentityService interface {
	// LoginWithGoogle verifies a Google ID token, finds or creates the user
	// by email and issues a session token.
	LoginWithGoogle(ctx context.Context, credential string) (*LoginResult, error)

	// CurrentUser returns the user behind a verified identity, provisioning
	// a local row for provider-issued identities on first use.
	CurrentUser(ctx context.Context, identity *models.Identity) (*models.User, error)

	// Provision makes sure a provider-issued identity has a local user row.
	// It is a no-op for identities issued by this service.
	Provision(ctx context.Context, identity *models.Identity) error
}

// LoginResult is returned after a successful sign-in
type LoginResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}
