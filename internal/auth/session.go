package auth

import (
	"context"
	"errors"
	"time"

	"dataroom/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

// SessionManager issues and verifies the HS256 tokens this service hands
// out after sign-in.
type SessionManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager creates a session manager. The secret must be non-empty.
func NewSessionManager(secret, issuer string, ttl time.Duration) (*SessionManager, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	return &SessionManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issuer returns the iss claim stamped on issued tokens
func (m *SessionManager) Issuer() string { return m.issuer }

func (m *SessionManager) IssueToken(user *models.User) (string, error) {
	now := m.now()
	claims := models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Email: user.Email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *SessionManager) VerifyToken(ctx context.Context, tokenString string) (*models.Identity, error) {
	if tokenString == "" {
		return nil, ErrTokenMissing
	}

	claims := &models.SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, classifyParseError(err)
	}
	if claims.Subject == "" {
		return nil, ErrInvalidClaims
	}

	return &models.Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

func (m *SessionManager) Close() error { return nil }
