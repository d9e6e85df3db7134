package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/husainf4l/rolekits/internal/broker"
	"github.com/husainf4l/rolekits/internal/merge"
	"github.com/husainf4l/rolekits/internal/model"
	"github.com/husainf4l/rolekits/internal/store"
)

// updateRetries bounds the read-merge-write loop when a concurrent
// writer moves the row between our read and our conditional update.
const updateRetries = 3

// CVService orchestrates CV use cases. Every successful write goes
// through the same path regardless of the caller (REST, GraphQL, agent
// tool): read current, merge the sparse patch, persist with a version
// precondition, then publish the new snapshot to the owner's
// subscribers.
type CVService struct {
	store  store.Store
	broker *broker.Broker
	log    zerolog.Logger
}

func NewCVService(s store.Store, b *broker.Broker, log zerolog.Logger) *CVService {
	return &CVService{store: s, broker: b, log: log}
}

// Broker exposes the fan-out component for subscription sessions.
func (s *CVService) Broker() *broker.Broker { return s.broker }

// AuthorizeCV fetches the CV and verifies the actor owns it. Sessions
// use it as their authorization step; reads and writes use it too so
// the ownership rule lives in one place.
func (s *CVService) AuthorizeCV(ctx context.Context, actor *model.User, cvID string) (*model.CV, error) {
	cv, err := s.store.CVs().Get(ctx, cvID)
	if err != nil {
		return nil, err
	}
	if cv.UserID != actor.UserID {
		return nil, model.ErrNotAuthorized
	}
	return cv, nil
}

// CreateCV persists a new CV owned by the actor, then publishes the
// initial snapshot.
func (s *CVService) CreateCV(ctx context.Context, actor *model.User, patch model.CVPatch) (*model.CV, error) {
	cv := merge.Apply(model.CV{UserID: actor.UserID}, patch)
	out, err := s.store.CVs().Create(ctx, &cv)
	if err != nil {
		return nil, err
	}
	s.broker.Publish(actor.UserID, out)
	return out, nil
}

func (s *CVService) GetCV(ctx context.Context, actor *model.User, cvID string) (*model.CV, error) {
	return s.AuthorizeCV(ctx, actor, cvID)
}

func (s *CVService) ListCVs(ctx context.Context, actor *model.User) ([]*model.CV, error) {
	return s.store.CVs().ListByOwner(ctx, actor.UserID)
}

// UpdateCV applies a sparse patch to the stored aggregate. The write
// carries the updated_at read beforehand as a precondition; when a
// concurrent writer got there first the row is re-read and the patch
// re-merged, so neither writer's fields are silently lost.
func (s *CVService) UpdateCV(ctx context.Context, actor *model.User, cvID string, patch model.CVPatch) (*model.CV, error) {
	if patch.IsEmpty() {
		return nil, model.ErrValidation
	}
	var lastErr error
	for attempt := 0; attempt < updateRetries; attempt++ {
		current, err := s.AuthorizeCV(ctx, actor, cvID)
		if err != nil {
			return nil, err
		}
		next := merge.Apply(*current, patch)
		out, err := s.store.CVs().Update(ctx, &next, current.UpdatedAt)
		if err != nil {
			if errors.Is(err, model.ErrConflict) {
				s.log.Debug().Str("cv_id", cvID).Int("attempt", attempt+1).Msg("update conflict, re-merging")
				lastErr = err
				continue
			}
			return nil, err
		}
		s.broker.Publish(actor.UserID, out)
		return out, nil
	}
	return nil, lastErr
}

// DeleteCV removes the aggregate. No further snapshots are published
// for it; live sessions notice on their next keep-alive re-fetch and
// terminate.
func (s *CVService) DeleteCV(ctx context.Context, actor *model.User, cvID string) error {
	if _, err := s.AuthorizeCV(ctx, actor, cvID); err != nil {
		return err
	}
	return s.store.CVs().Delete(ctx, cvID)
}
