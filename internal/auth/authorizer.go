package auth

import (
	"context"

	"github.com/husainf4l/rolekits/internal/model"
)

// Authorizer resolves a bearer credential to the account it belongs to.
// Token issuance lives outside this service; we only verify.
type Authorizer interface {
	// ResolveIdentity returns the authenticated user, or an error
	// wrapping model.ErrUnauthenticated when the credential is missing,
	// malformed or does not resolve to a known account.
	ResolveIdentity(ctx context.Context, credential string) (*model.User, error)
}
