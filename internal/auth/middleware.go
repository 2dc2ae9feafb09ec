package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Middleware parses an optional Bearer token and attaches the resulting
// Identity to the context. Requests without a token proceed anonymously;
// tenant resolution and handlers decide whether identity is required.
// A present-but-invalid token is rejected outright so a caller never
// operates with silently dropped credentials.
func Middleware(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}

			claims, err := svc.ParseToken(strings.TrimSpace(token))
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				http.Error(w, "invalid token subject", http.StatusUnauthorized)
				return
			}

			ctx := WithIdentity(r.Context(), Identity{
				UserID:    userID,
				Email:     claims.Email,
				Superuser: claims.Superuser,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
