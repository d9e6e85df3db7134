package services

import (
	"context"
	"strings"

	"github.com/husainf4l/rolekits/internal/model"
	"github.com/husainf4l/rolekits/internal/store"
)

// UserService handles account records. Credentials and token issuance
// belong to the external auth collaborator, not here.
type UserService struct {
	store store.Store
}

func NewUserService(s store.Store) *UserService {
	return &UserService{store: s}
}

func (s *UserService) CreateUser(ctx context.Context, username string, displayName *string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, model.ErrValidation
	}
	return s.store.Users().Create(ctx, &model.User{Username: username, DisplayName: displayName})
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.store.Users().Get(ctx, userID)
}
