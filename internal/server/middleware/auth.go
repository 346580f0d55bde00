package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/freema/shortcutd/internal/apperror"
)

// BearerAuth validates the Authorization: Bearer <token> header against the
// configured token using a constant-time comparison. Failures get a 401 with
// a WWW-Authenticate challenge.
func BearerAuth(expected string) func(http.Handler) http.Handler {
	want := []byte(expected)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(token), want) != 1 {
				slog.Warn("rejected unauthenticated request",
					"path", r.URL.Path,
					"remote", r.RemoteAddr,
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="shortcutd"`)
				writeError(w, "unauthorized", apperror.Unauthorized("missing or invalid Bearer token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
