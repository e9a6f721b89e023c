package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// DevActor returns middleware that trusts X-Actor-ID and X-Actor-Role
// headers. Only mounted when token verification is disabled; never use
// outside local development.
func DevActor(defaultRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(r.Header.Get("X-Actor-ID"))
			if err != nil {
				http.Error(w, "missing X-Actor-ID header", http.StatusUnauthorized)
				return
			}

			role := r.Header.Get("X-Actor-Role")
			if role == "" {
				role = defaultRole
			}

			ctx := WithActor(r.Context(), Actor{ID: id, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
