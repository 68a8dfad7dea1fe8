package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"dataroom/internal/domain"
	"dataroom/internal/httputil"
)

// Recovery middleware recovers from panics and returns an upstream_failure envelope
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic recovered",
						"error", err,
						"path", r.URL.Path,
						"method", r.Method,
						"stack", string(debug.Stack()),
					)

					httputil.RespondError(w, http.StatusInternalServerError, domain.KindUpstreamFailure, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
