package store

import (
	"context"
	"time"

	"github.com/husainf4l/rolekits/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/.
type Store interface {
	Users() Users
	CVs() CVs
}

type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// CVs persists the CV aggregate. Section sequences are stored as
// serialized JSON text; drivers encode and decode at the boundary so
// callers only ever see native structs.
type CVs interface {
	Create(ctx context.Context, cv *model.CV) (*model.CV, error)
	Get(ctx context.Context, cvID string) (*model.CV, error)
	ListByOwner(ctx context.Context, userID string) ([]*model.CV, error)
	// Update writes the full aggregate, but only when the stored row's
	// updated_at still equals expectedUpdatedAt. A moved row returns
	// model.ErrConflict so the caller can re-read and re-merge.
	Update(ctx context.Context, cv *model.CV, expectedUpdatedAt time.Time) (*model.CV, error)
	Delete(ctx context.Context, cvID string) error
}
