package chi

import (
	"net/http"
	"strings"
)

// adminPrefixes are route prefixes that require a Bearer token.
var adminPrefixes = []string{
	"/api/v1/admin/",
	"/api/v1/ingredients/admin",
}

// adminMethods maps method+path pairs outside the admin prefix that still
// require a token (catalog writes).
func isAdminRoute(r *http.Request) bool {
	for _, p := range adminPrefixes {
		if strings.HasPrefix(r.URL.Path, p) {
			return true
		}
	}
	if r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/v1/dishes") {
		return true
	}
	return false
}

// BearerAuthMiddleware returns a middleware that validates Bearer tokens on
// admin routes. If apiKeys is empty, authentication is disabled (pass-through).
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	validKeys := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			validKeys[k] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		// Auth disabled — pass everything through
		if len(validKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isAdminRoute(r) {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, codeBadRequest, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized,
					codeBadRequest, "authorization header must use Bearer scheme")
				return
			}

			token := auth[len(bearerPrefix):]
			if _, ok := validKeys[token]; !ok {
				writeError(w, http.StatusUnauthorized, codeBadRequest, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
