package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// classifyParseError maps a jwt parse failure onto one of the rejection reasons.
// Expiry is checked first: jwt reports an expired token as invalid claims too.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrUnknownSigner
	default:
		return ErrInvalidClaims
	}
}
