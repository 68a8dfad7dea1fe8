package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"dataroom/internal/auth"
	"dataroom/internal/domain"
	"dataroom/internal/domain/models"
	"dataroom/internal/httputil"
)

// Provisioner creates local user rows for identities issued elsewhere
type Provisioner interface {
	Provision(ctx context.Context, identity *models.Identity) error
}

// PublicRoute is a method and path that bypasses authentication.
// An empty Method matches any method.
type PublicRoute struct {
	Method string
	Path   string
}

// DefaultPublicRoutes are reachable without a bearer token
var DefaultPublicRoutes = []PublicRoute{
	{Path: "/health"},
	{Method: http.MethodPost, Path: "/api/auth/google"},
}

// AuthMiddleware verifies the bearer token of every non-public request and
// stores the caller's identity in the request context. Every rejection is
// answered with 401 and the same envelope; the reason is only logged.
func AuthMiddleware(verifier auth.TokenVerifier, provisioner Provisioner, public []PublicRoute, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(public, r) {
				next.ServeHTTP(w, r)
				return
			}

			token, err := bearerToken(r)
			if err == nil {
				var identity *models.Identity
				identity, err = verifier.VerifyToken(r.Context(), token)
				if err == nil {
					if identity.External && provisioner != nil {
						if err = provisioner.Provision(r.Context(), identity); err != nil {
							logger.Error("failed to provision user",
								"user_id", identity.UserID,
								"error", err,
							)
							httputil.RespondError(w, http.StatusInternalServerError, domain.KindUpstreamFailure, "internal server error")
							return
						}
					}
					next.ServeHTTP(w, httputil.WithIdentity(r, identity))
					return
				}
			}

			reason := domain.AuthReasonInvalidClaims
			var authErr *domain.UnauthenticatedError
			if errors.As(err, &authErr) {
				reason = authErr.Reason
			}
			logger.Debug("request rejected",
				"reason", reason,
				"path", r.URL.Path,
				"method", r.Method,
			)
			httputil.RespondError(w, http.StatusUnauthorized, domain.KindUnauthenticated, "authentication required")
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>"
func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", auth.ErrTokenMissing
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", auth.ErrTokenMalformed
	}
	return strings.TrimSpace(token), nil
}

func isPublic(routes []PublicRoute, r *http.Request) bool {
	for _, route := range routes {
		if route.Path == r.URL.Path && (route.Method == "" || route.Method == r.Method) {
			return true
		}
	}
	return false
}
