// Package broker fans CV-changed snapshots out to live subscribers.
// It is an in-process, single-node design: a restart drops all
// subscriptions and clients are expected to reconnect.
package broker

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/husainf4l/rolekits/internal/model"
)

const defaultQueueSize = 16

// Subscription is one live viewer's queue of pending CV snapshots.
// Receive from C; the channel preserves publish order.
type Subscription struct {
	C <-chan *model.CV

	ownerID string
	ch      chan *model.CV
	created time.Time
}

// OwnerID returns the user whose CV changes this subscription observes.
func (s *Subscription) OwnerID() string { return s.ownerID }

// Broker owns the owner → subscriptions registry. Construct with New
// and inject it; there is deliberately no package-level default so test
// instances cannot cross-contaminate.
type Broker struct {
	queueSize int
	log       zerolog.Logger

	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

// New creates an empty broker. queueSize bounds each subscriber queue;
// values < 1 fall back to the default.
func New(queueSize int, log zerolog.Logger) *Broker {
	if queueSize < 1 {
		queueSize = defaultQueueSize
	}
	return &Broker{
		queueSize: queueSize,
		log:       log,
		subs:      make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe registers a new queue under ownerID. Registration is atomic
// with respect to Publish: a concurrent publish either sees the queue
// fully registered or not at all.
func (b *Broker) Subscribe(ownerID string) *Subscription {
	sub := &Subscription{
		ownerID: ownerID,
		ch:      make(chan *model.CV, b.queueSize),
		created: time.Now().UTC(),
	}
	sub.C = sub.ch

	b.mu.Lock()
	set, ok := b.subs[ownerID]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.subs[ownerID] = set
	}
	set[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes the queue from the registry and prunes the owner
// key when it was the last one. Idempotent: a second call is a no-op.
func (b *Broker) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.subs[sub.ownerID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(b.subs, sub.ownerID)
	}
}

// Publish delivers the snapshot to every queue registered for ownerID.
// Delivery is best-effort: a full queue drops this event for that one
// subscriber and the fan-out continues. Publish never blocks, so a slow
// reader cannot stall the writer that triggered it.
func (b *Broker) Publish(ownerID string, snapshot *model.CV) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs[ownerID] {
		select {
		case sub.ch <- snapshot:
		default:
			b.log.Debug().
				Str("owner_id", ownerID).
				Str("cv_id", snapshot.CVID).
				Msg("subscriber queue full, dropping update")
		}
	}
}

// SubscriberCount reports how many live queues ownerID has. Zero means
// the owner key is absent from the registry.
func (b *Broker) SubscriberCount(ownerID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[ownerID])
}
