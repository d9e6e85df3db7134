package gql

import (
	"context"
	"errors"
	"time"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/husainf4l/rolekits/internal/model"
)

// CvUpdates streams CV snapshots: the current state first, then one per
// persisted mutation, plus keep-alive re-snapshots on idle. The broker
// queue is released on every exit path, including client cancellation.
func (r *Resolver) CvUpdates(ctx context.Context, args struct{ CvID graphql.ID }) (<-chan *cvOut, error) {
	user, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	cvID := string(args.CvID)
	cv, err := r.svc.AuthorizeCV(ctx, user, cvID)
	if err != nil {
		return nil, err
	}

	sub := r.svc.Broker().Subscribe(user.UserID)
	out := make(chan *cvOut)

	go func() {
		defer r.svc.Broker().Unsubscribe(sub)
		defer close(out)

		if !send(ctx, out, newCV(cv)) {
			return
		}

		timer := time.NewTimer(r.keepAlive)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case snapshot := <-sub.C:
				if !send(ctx, out, newCV(snapshot)) {
					return
				}
			case <-timer.C:
				current, err := r.svc.GetCV(ctx, user, cvID)
				if err != nil {
					if !errors.Is(err, model.ErrNotFound) {
						r.log.Debug().Err(err).Str("cv_id", cvID).Msg("keep-alive re-fetch failed")
					}
					return
				}
				if !send(ctx, out, newCV(current)) {
					return
				}
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(r.keepAlive)
		}
	}()

	return out, nil
}

func send(ctx context.Context, out chan<- *cvOut, cv *cvOut) bool {
	select {
	case out <- cv:
		return true
	case <-ctx.Done():
		return false
	}
}
