package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// TokenVerifier turns a bearer token into the user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

type contextKey string

const userIDKey contextKey = "orbitshare.user_id"

// RequireAuth verifies the Authorization header and stores the caller's
// user id on the request context. Both a missing and an invalid token get
// a 401.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeMessage(w, r, http.StatusUnauthorized, "access denied: no token provided")
				return
			}

			token := header
			if _, after, found := strings.Cut(header, " "); found {
				token = after
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				writeMessage(w, r, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the verified caller id stored by RequireAuth.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}
