package middleware

import (
	"net/http"
	"strings"

	"github.com/freema/shortcutd/internal/apperror"
)

// TransportGuard rejects requests whose Host or Origin header is not in the
// configured allow-lists, guarding the MCP endpoint against DNS-rebinding
// attacks. Matching is case-insensitive and exact (host:port included).
// Returns nil when both lists are empty, in which case protection is off.
func TransportGuard(allowedHosts, allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedHosts) == 0 && len(allowedOrigins) == 0 {
		return nil
	}

	hosts := toSet(allowedHosts)
	origins := toSet(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(hosts) > 0 {
				if _, ok := hosts[strings.ToLower(r.Host)]; !ok {
					writeError(w, "forbidden_transport", &apperror.AppError{
						Err:     apperror.ErrUnauthorized,
						Message: "host not allowed",
						Status:  http.StatusMisdirectedRequest,
					})
					return
				}
			}
			// Origin is only present on browser requests; its absence is fine.
			if origin := r.Header.Get("Origin"); origin != "" && len(origins) > 0 {
				if _, ok := origins[strings.ToLower(origin)]; !ok {
					writeError(w, "forbidden_transport", &apperror.AppError{
						Err:     apperror.ErrUnauthorized,
						Message: "origin not allowed",
						Status:  http.StatusForbidden,
					})
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
