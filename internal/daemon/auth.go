package daemon

import (
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// authMiddleware guards an API handler with the configured bearer token
// (paths.api_token, also read from SONGSCRIBE_API_TOKEN). The daemon binds
// to loopback by default, so an empty token disables the check rather than
// refusing every request.
func authMiddleware(token string, next http.HandlerFunc) http.HandlerFunc {
	if token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, bearerPrefix) || strings.TrimPrefix(auth, bearerPrefix) != token {
			http.Error(w, `{"success":false,"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
