package auth

import (
	"context"
	"errors"

	"dataroom/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

// IssuerVerifier is a TokenVerifier bound to a single iss claim
type IssuerVerifier interface {
	TokenVerifier
	Issuer() string
}

// ChainVerifier routes a token to the verifier registered for its
// (unverified) iss claim. Tokens from any other issuer are rejected
// without attempting signature checks.
type ChainVerifier struct {
	byIssuer map[string]IssuerVerifier
	order    []IssuerVerifier
}

// NewChainVerifier builds a chain. At least one verifier is required and
// issuers must be distinct.
func NewChainVerifier(verifiers ...IssuerVerifier) (*ChainVerifier, error) {
	if len(verifiers) == 0 {
		return nil, errors.New("at least one token verifier is required")
	}
	c := &ChainVerifier{byIssuer: make(map[string]IssuerVerifier, len(verifiers))}
	for _, v := range verifiers {
		if _, dup := c.byIssuer[v.Issuer()]; dup {
			return nil, errors.New("duplicate token issuer: " + v.Issuer())
		}
		c.byIssuer[v.Issuer()] = v
		c.order = append(c.order, v)
	}
	return c, nil
}

func (c *ChainVerifier) VerifyToken(ctx context.Context, tokenString string) (*models.Identity, error) {
	if tokenString == "" {
		return nil, ErrTokenMissing
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrTokenMalformed
	}

	v, ok := c.byIssuer[claims.Issuer]
	if !ok {
		return nil, ErrUnknownSigner
	}
	return v.VerifyToken(ctx, tokenString)
}

func (c *ChainVerifier) Close() error {
	var errs []error
	for _, v := range c.order {
		if err := v.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
