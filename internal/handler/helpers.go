package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"dataroom/internal/domain"
	"dataroom/internal/httputil"
)

// handleError converts domain errors to HTTP responses.
// Upstream failures are logged with their cause and answered generically.
func handleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) && httpErr.Kind() != domain.KindUpstreamFailure {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Kind(), httpErr.Error())
		return
	}

	switch kind := domain.KindOf(err); kind {
	case domain.KindValidationFailed:
		httputil.RespondError(w, http.StatusBadRequest, kind, err.Error())
	case domain.KindNotFound:
		httputil.RespondError(w, http.StatusNotFound, kind, err.Error())
	case domain.KindConflict:
		httputil.RespondError(w, http.StatusConflict, kind, err.Error())
	case domain.KindUnauthenticated:
		httputil.RespondError(w, http.StatusUnauthorized, kind, "authentication required")
	default:
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		httputil.RespondError(w, http.StatusInternalServerError, domain.KindUpstreamFailure, "internal server error")
	}
}

// pathID returns the {id} path value
func pathID(r *http.Request) string {
	return r.PathValue("id")
}
