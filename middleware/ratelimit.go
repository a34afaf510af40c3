package middleware

import (
	"net/http"
	"strconv"
	"time"

	"study-notes/auth"

	"github.com/go-chi/httprate"
)

func limitHandler(msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusTooManyRequests, msg)
	}
}

// GlobalLimiter allows 1000 requests per IP every 15 minutes.
func GlobalLimiter() func(http.Handler) http.Handler {
	return httprate.Limit(1000, 15*time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(limitHandler("Too many requests, please try again later.")),
	)
}

// LoginLimiter allows 5 login attempts per IP every 15 minutes.
func LoginLimiter() func(http.Handler) http.Handler {
	return httprate.Limit(5, 15*time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(limitHandler("Too many login attempts, please try again later.")),
	)
}

// AILimiter allows 10 AI requests per minute for each user, or per IP when
// the request is not authenticated. It must run after RequireAuth.
func AILimiter() func(http.Handler) http.Handler {
	return httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(userOrIP),
		httprate.WithLimitHandler(limitHandler("Too many AI requests, please slow down.")),
	)
}

func userOrIP(r *http.Request) (string, error) {
	if id := auth.UserID(r.Context()); id > 0 {
		return "user:" + strconv.Itoa(id), nil
	}
	return httprate.KeyByRealIP(r)
}
