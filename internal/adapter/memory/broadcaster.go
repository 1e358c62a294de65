package memory

import (
	"context"
	"sync"

	"github.com/pscheid92/tugofwar/internal/domain"
)

const subscriberBufferSize = 64

// Broadcaster fans payloads out to in-process subscribers. A subscriber whose
// buffer is full is dropped rather than silently skipped, which ends its session.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[*Subscription]struct{}
}

var _ domain.Broadcaster = (*Broadcaster)(nil)

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subscribers: make(map[*Subscription]struct{})}
}

func (b *Broadcaster) Publish(_ context.Context, payload []byte) error {
	msg := string(payload)

	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subscribers {
		select {
		case sub.ch <- msg:
		default:
			b.removeLocked(sub, errSlowSubscriber)
		}
	}
	return nil
}

func (b *Broadcaster) Subscribe(_ context.Context) (domain.Subscription, error) {
	sub := &Subscription{
		broadcaster: b,
		ch:          make(chan string, subscriberBufferSize),
	}

	b.mu.Lock()
	b.subscribers[sub] = struct{}{}
	b.mu.Unlock()

	return sub, nil
}

// Subscribers returns the number of live subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

func (b *Broadcaster) remove(sub *Subscription, reason error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(sub, reason)
}

func (b *Broadcaster) removeLocked(sub *Subscription, reason error) {
	if _, ok := b.subscribers[sub]; !ok {
		return
	}
	delete(b.subscribers, sub)
	sub.err = reason
	close(sub.ch)
}

type Subscription struct {
	broadcaster *Broadcaster
	ch          chan string
	err         error
}

var _ domain.Subscription = (*Subscription)(nil)

func (s *Subscription) Messages() <-chan string {
	return s.ch
}

func (s *Subscription) Err() error {
	return s.err
}

func (s *Subscription) Close() error {
	s.broadcaster.remove(s, domain.ErrSubscriptionClosed)
	return nil
}
