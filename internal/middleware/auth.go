package middleware

import (
	"crypto/hmac"
	"net/http"
	"strings"
)

// AdminAuth guards the admin surface with a shared bearer secret. The
// comparison is constant-time; a missing or wrong secret gets a bare 401
// with no hint about which it was.
func AdminAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || secret == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			if !hmac.Equal([]byte(token), []byte(secret)) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
