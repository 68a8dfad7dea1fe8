package auth

import (
	"context"
	"errors"
	"log/slog"

	tokens "dataroom/internal/auth"
	"dataroom/internal/domain"
	"dataroom/internal/domain/models"
	"dataroom/internal/domain/repositories"
	"dataroom/internal/domain/services"
)

type identityService struct {
	userRepo repositories.UserRepository
	google   tokens.IDTokenVerifier // nil when Google sign-in is disabled
	issuer   tokens.TokenIssuer
	logger   *slog.Logger
}

// NewIdentityService creates the sign-in service. google may be nil.
func NewIdentityService(
	userRepo repositories.UserRepository,
	google tokens.IDTokenVerifier,
	issuer tokens.TokenIssuer,
	logger *slog.Logger,
) services.IdentityService {
	return &identityService{
		userRepo: userRepo,
		google:   google,
		issuer:   issuer,
		logger:   logger,
	}
}

// LoginWithGoogle verifies the credential, finds or creates the user by
// email and issues a session token
func (s *identityService) LoginWithGoogle(ctx context.Context, credential string) (*services.LoginResult, error) {
	if s.google == nil {
		return nil, &domain.ValidationError{Message: "google sign-in is not enabled"}
	}
	if credential == "" {
		return nil, &domain.ValidationError{Message: "credential is required"}
	}

	profile, err := s.google.VerifyIDToken(ctx, credential)
	if err != nil {
		return nil, err
	}

	user, err := s.findOrCreate(ctx, profile)
	if err != nil {
		return nil, err
	}

	token, err := s.issuer.IssueToken(user)
	if err != nil {
		return nil, domain.NewUpstream("issue session token", err)
	}

	s.logger.Info("user signed in", "user_id", user.ID, "provider", "google")
	return &services.LoginResult{User: user, Token: token}, nil
}

func (s *identityService) findOrCreate(ctx context.Context, profile *models.GoogleProfile) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, profile.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	user = &models.User{Email: profile.Email, Name: profile.Name}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent first sign-in created the same email
		if errors.Is(err, domain.ErrConflict) {
			return s.userRepo.GetByEmail(ctx, profile.Email)
		}
		return nil, err
	}

	s.logger.Info("user created", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// CurrentUser returns the user behind a verified identity
func (s *identityService) CurrentUser(ctx context.Context, identity *models.Identity) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, identity.UserID)
	if err == nil || !identity.External || !errors.Is(err, domain.ErrNotFound) {
		return user, err
	}

	if err := s.Provision(ctx, identity); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, identity.UserID)
}

// Provision creates the local row for a provider-issued identity
func (s *identityService) Provision(ctx context.Context, identity *models.Identity) error {
	if !identity.External {
		return nil
	}
	return s.userRepo.Ensure(ctx, &models.User{
		ID:    identity.UserID,
		Email: identity.Email,
		Name:  identity.Name,
	})
}
