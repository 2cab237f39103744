package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	h "familycal/internal/delivery/http/helpers"
)

// RequireCronSecret returns a wrapper that checks "Authorization: Bearer <secret>"
// on scheduler-triggered endpoints. An empty secret disables the check.
func RequireCronSecret(secret string, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if secret == "" {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "Unauthorized")
				return
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				logger.WarnContext(r.Context(), "cron secret mismatch", "path", r.URL.Path)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "Unauthorized")
				return
			}
			next(w, r)
		}
	}
}
