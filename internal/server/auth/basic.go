package auth

import (
	"context"
	"net/http"

	"github.com/villaresmetals/console/internal/logging"
)

type ctxKey string

const userKey ctxKey = "username"

// UserFromContext returns the username authenticated by Basic.
func UserFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(userKey).(string)
	return u, ok && u != ""
}

// Basic rejects requests without valid HTTP Basic credentials with 401.
// Every request is checked independently; there is no session.
func Basic(accounts *Accounts, realm string, logger logging.Logger) func(http.Handler) http.Handler {
	challenge := `Basic realm="` + realm + `"`
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", challenge)
				http.Error(w, "missing credentials", http.StatusUnauthorized)
				return
			}
			if _, valid := accounts.Verify(username, password); !valid {
				logger.Warn(r.Context(), "rejected credentials", "user", username, "path", r.URL.Path)
				w.Header().Set("WWW-Authenticate", challenge)
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, username)))
		})
	}
}
