package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"study-notes/auth"

	"github.com/sirupsen/logrus"
)

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// tokenFromRequest prefers the bearer header and falls back to the cookie.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); tok != "" {
			return tok
		}
	}
	if c, err := r.Cookie(auth.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// RequireAuth verifies the session token and attaches its claims to the
// request context. A missing or expired token is rejected with 401, any
// other verification failure with 403.
func RequireAuth(issuer *auth.Issuer, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				writeError(w, http.StatusUnauthorized, "No token provided")
				return
			}

			claims, err := issuer.Verify(tokenStr)
			if err != nil {
				log.WithError(err).WithField("path", r.URL.Path).Debug("token rejected")
				if errors.Is(err, auth.ErrTokenExpired) {
					writeError(w, http.StatusUnauthorized, "Token expired")
					return
				}
				writeError(w, http.StatusForbidden, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// ValidUserID rejects requests whose verified claims carry no usable user id.
func ValidUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.UserID(r.Context()) <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}
		next.ServeHTTP(w, r)
	})
}
