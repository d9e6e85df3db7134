package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/husainf4l/rolekits/internal/model"
	"github.com/husainf4l/rolekits/internal/store"
)

// JWTAuthorizer verifies HS256 bearer tokens issued by the external
// auth collaborator. The subject claim carries the username, which is
// resolved to the stored account.
type JWTAuthorizer struct {
	secret []byte
	users  store.Users
}

func NewJWTAuthorizer(secret string, users store.Users) *JWTAuthorizer {
	return &JWTAuthorizer{secret: []byte(secret), users: users}
}

func (a *JWTAuthorizer) ResolveIdentity(ctx context.Context, credential string) (*model.User, error) {
	if credential == "" {
		return nil, model.ErrUnauthenticated
	}
	tok, err := jwt.Parse(credential, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", model.ErrUnauthenticated)
	}
	sub, err := tok.Claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: token has no subject", model.ErrUnauthenticated)
	}
	user, err := a.users.GetByUsername(ctx, sub)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", model.ErrUnauthenticated)
		}
		return nil, err
	}
	return user, nil
}
