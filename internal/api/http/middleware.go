package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/husainf4l/rolekits/internal/api/respond"
	"github.com/husainf4l/rolekits/internal/auth"
	"github.com/husainf4l/rolekits/internal/model"
)

type contextKey string

const actorKey contextKey = "actor"

// BearerToken extracts the credential from the Authorization header,
// falling back to the token query parameter for transports that cannot
// set headers (EventSource).
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// AuthMiddleware resolves the bearer credential and stores the actor in
// the request context. Unauthenticated requests stop here with 401.
func AuthMiddleware(authz auth.Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authz.ResolveIdentity(r.Context(), BearerToken(r))
			if err != nil {
				respond.WriteDomainError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), user)))
		})
	}
}

// WithActor returns a context carrying the authenticated user.
func WithActor(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, actorKey, u)
}

// ActorFrom returns the authenticated user stored by AuthMiddleware.
func ActorFrom(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(actorKey).(*model.User)
	return u, ok
}
