package broker

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/husainf4l/rolekits/internal/model"
)

func snapshot(cvID, summary string) *model.CV {
	return &model.CV{CVID: cvID, UserID: "owner-1", Summary: &summary}
}

func TestPublishFIFOPerSubscriber(t *testing.T) {
	b := New(8, zerolog.Nop())
	sub := b.Subscribe("owner-1")
	defer b.Unsubscribe(sub)

	for i := 1; i <= 3; i++ {
		b.Publish("owner-1", snapshot("cv-1", fmt.Sprintf("v%d", i)))
	}
	for i := 1; i <= 3; i++ {
		select {
		case got := <-sub.C:
			if want := fmt.Sprintf("v%d", i); *got.Summary != want {
				t.Fatalf("event %d: got %q, want %q", i, *got.Summary, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestFanOutToAllOwnerSubscribers(t *testing.T) {
	b := New(8, zerolog.Nop())
	s1 := b.Subscribe("owner-1")
	s2 := b.Subscribe("owner-1")
	other := b.Subscribe("owner-2")
	defer b.Unsubscribe(s1)
	defer b.Unsubscribe(s2)
	defer b.Unsubscribe(other)

	b.Publish("owner-1", snapshot("cv-1", "hello"))

	for _, sub := range []*Subscription{s1, s2} {
		select {
		case <-sub.C:
		case <-time.After(time.Second):
			t.Fatal("owner-1 subscriber did not receive the event")
		}
	}
	select {
	case <-other.C:
		t.Fatal("owner-2 subscriber received owner-1's event")
	default:
	}
}

func TestFullQueueDoesNotBlockOthers(t *testing.T) {
	b := New(1, zerolog.Nop())
	slow := b.Subscribe("owner-1")
	fast := b.Subscribe("owner-1")
	defer b.Unsubscribe(slow)
	defer b.Unsubscribe(fast)

	// First publish fills slow's single-slot queue; drain fast's copy.
	b.Publish("owner-1", snapshot("cv-1", "first"))
	<-fast.C

	done := make(chan struct{})
	go func() {
		b.Publish("owner-1", snapshot("cv-1", "second"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber queue")
	}

	select {
	case got := <-fast.C:
		if *got.Summary != "second" {
			t.Fatalf("fast subscriber got %q, want %q", *got.Summary, "second")
		}
	case <-time.After(time.Second):
		t.Fatal("fast subscriber missed the event dropped for the slow one")
	}
}

func TestRegistryPrunedAfterLastUnsubscribe(t *testing.T) {
	b := New(8, zerolog.Nop())
	s1 := b.Subscribe("owner-1")
	s2 := b.Subscribe("owner-1")

	b.Unsubscribe(s1)
	if got := b.SubscriberCount("owner-1"); got != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", got)
	}
	b.Unsubscribe(s2)
	if got := b.SubscriberCount("owner-1"); got != 0 {
		t.Fatalf("SubscriberCount after last unsubscribe = %d, want 0", got)
	}
}

func TestUnsubscribeIdempotent(t *testing.T) {
	b := New(8, zerolog.Nop())
	s1 := b.Subscribe("owner-1")
	s2 := b.Subscribe("owner-1")

	b.Unsubscribe(s1)
	b.Unsubscribe(s1) // second call must be a no-op
	b.Unsubscribe(nil)

	if got := b.SubscriberCount("owner-1"); got != 1 {
		t.Fatalf("SubscriberCount = %d, want 1 (double unsubscribe decremented)", got)
	}
	b.Unsubscribe(s2)
}

func TestPublishAfterCloseOnlyReachesRemaining(t *testing.T) {
	b := New(8, zerolog.Nop())
	s1 := b.Subscribe("owner-1")
	s2 := b.Subscribe("owner-1")

	b.Publish("owner-1", snapshot("cv-1", "both"))
	<-s1.C
	<-s2.C

	b.Unsubscribe(s1)
	b.Publish("owner-1", snapshot("cv-1", "only-s2"))

	select {
	case got := <-s2.C:
		if *got.Summary != "only-s2" {
			t.Fatalf("got %q, want %q", *got.Summary, "only-s2")
		}
	case <-time.After(time.Second):
		t.Fatal("remaining subscriber did not receive the event")
	}
	select {
	case <-s1.C:
		t.Fatal("unsubscribed queue received an event")
	default:
	}
}

func TestConcurrentSubscribePublish(t *testing.T) {
	b := New(64, zerolog.Nop())
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				b.Publish("owner-1", snapshot("cv-1", "spin"))
			}
		}
	}()
	for i := 0; i < 100; i++ {
		sub := b.Subscribe("owner-1")
		b.Unsubscribe(sub)
	}
	close(stop)
	if got := b.SubscriberCount("owner-1"); got != 0 {
		t.Fatalf("registry leaked %d subscriptions", got)
	}
}
