package gql

import (
	"context"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/rs/zerolog"

	"github.com/husainf4l/rolekits/internal/auth"
	"github.com/husainf4l/rolekits/internal/model"
	"github.com/husainf4l/rolekits/internal/services"
)

// Resolver is the root of the GraphQL schema. Every operation resolves
// the bearer credential itself, so WS subscriptions and plain POSTs get
// the same authentication semantics.
type Resolver struct {
	authz     auth.Authorizer
	svc       *services.CVService
	keepAlive time.Duration
	log       zerolog.Logger
}

func NewResolver(authz auth.Authorizer, svc *services.CVService, keepAlive time.Duration, log zerolog.Logger) *Resolver {
	return &Resolver{authz: authz, svc: svc, keepAlive: keepAlive, log: log}
}

func (r *Resolver) actor(ctx context.Context) (*model.User, error) {
	return r.authz.ResolveIdentity(ctx, TokenFrom(ctx))
}

// --- Query ---

func (r *Resolver) Me(ctx context.Context) (*userOut, error) {
	user, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	return newUser(user), nil
}

func (r *Resolver) Cv(ctx context.Context, args struct{ CvID graphql.ID }) (*cvOut, error) {
	user, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	cv, err := r.svc.GetCV(ctx, user, string(args.CvID))
	if err != nil {
		return nil, err
	}
	return newCV(cv), nil
}

func (r *Resolver) MyCvs(ctx context.Context) ([]*cvOut, error) {
	user, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	cvs, err := r.svc.ListCVs(ctx, user)
	if err != nil {
		return nil, err
	}
	out := make([]*cvOut, 0, len(cvs))
	for _, cv := range cvs {
		out = append(out, newCV(cv))
	}
	return out, nil
}

// --- Mutation ---

func (r *Resolver) CreateCv(ctx context.Context, args struct{ Input CVInput }) (*cvOut, error) {
	user, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	cv, err := r.svc.CreateCV(ctx, user, args.Input.toPatch())
	if err != nil {
		return nil, err
	}
	return newCV(cv), nil
}

func (r *Resolver) UpdateCv(ctx context.Context, args struct {
	CvID  graphql.ID
	Input CVInput
}) (*cvOut, error) {
	user, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	cv, err := r.svc.UpdateCV(ctx, user, string(args.CvID), args.Input.toPatch())
	if err != nil {
		return nil, err
	}
	return newCV(cv), nil
}

func (r *Resolver) DeleteCv(ctx context.Context, args struct{ CvID graphql.ID }) (bool, error) {
	user, err := r.actor(ctx)
	if err != nil {
		return false, err
	}
	if err := r.svc.DeleteCV(ctx, user, string(args.CvID)); err != nil {
		return false, err
	}
	return true, nil
}
