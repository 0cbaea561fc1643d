package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

// WithActor stores verified claims on ctx.
func WithActor(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func ActorFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok && c != nil
}

// Middleware requires a bearer session token. A missing token is 401 and a
// token that fails verification is 403.
func Middleware(tokens *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if header == "" || raw == "" || raw == header {
				deny(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				logrus.WithError(err).WithField("path", r.URL.Path).Debug("rejected session token")
				deny(w, http.StatusForbidden, "Forbidden")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), claims)))
		})
	}
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
