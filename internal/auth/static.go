package auth

import (
	"context"

	"github.com/husainf4l/rolekits/internal/model"
)

// StaticAuthorizer maps fixed tokens to users. Local development and
// tests only; it never belongs in a production wiring.
type StaticAuthorizer struct {
	tokens map[string]*model.User
}

func NewStaticAuthorizer(tokens map[string]*model.User) *StaticAuthorizer {
	return &StaticAuthorizer{tokens: tokens}
}

func (a *StaticAuthorizer) ResolveIdentity(_ context.Context, credential string) (*model.User, error) {
	if u, ok := a.tokens[credential]; ok {
		return u, nil
	}
	return nil, model.ErrUnauthenticated
}
