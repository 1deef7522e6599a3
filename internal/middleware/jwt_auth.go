package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/majhol08/rtspscout/internal/tokens"
)

type contextKey string

const subjectKey contextKey = "auth_subject"

// Subject returns the authenticated subject, if any.
func Subject(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey).(string)
	return s, ok
}

// JWTAuth rejects requests without a valid bearer token. When mgr is nil
// the API runs open, which is the default for a single-operator tool on a
// trusted network.
func JWTAuth(mgr *tokens.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if mgr == nil {
				next.ServeHTTP(w, r)
				return
			}

			raw := r.Header.Get("Authorization")
			// Websocket clients cannot set headers from browsers; allow
			// the token as a query parameter there.
			if raw == "" {
				if q := r.URL.Query().Get("token"); q != "" {
					raw = "Bearer " + q
				}
			}
			if !strings.HasPrefix(raw, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := mgr.Validate(strings.TrimPrefix(raw, "Bearer "))
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
