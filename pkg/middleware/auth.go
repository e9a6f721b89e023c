package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
)

type actorKey struct{}

// Actor identifies the authenticated caller and the role claim asserted
// by the identity provider.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// ActorFrom extracts the authenticated actor from the request context.
func ActorFrom(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// WithActor returns a context carrying the given actor. Used by tests and
// by the auth middleware after token verification.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

type actorClaims struct {
	Subject string `json:"sub"`
	Role    string `json:"role"`
}

// Auth returns middleware that verifies a bearer ID token against the
// given OIDC verifier and injects the resulting Actor into the request
// context. Requests without a valid token are rejected with 401.
func Auth(verifier *oidc.IDTokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			token, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			var claims actorClaims
			if err := token.Claims(&claims); err != nil {
				http.Error(w, "invalid token claims", http.StatusUnauthorized)
				return
			}

			id, err := uuid.Parse(claims.Subject)
			if err != nil {
				http.Error(w, "invalid subject claim", http.StatusUnauthorized)
				return
			}

			ctx := WithActor(r.Context(), Actor{ID: id, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}
