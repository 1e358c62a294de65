package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/tugofwar/internal/domain"
)

// GameUpdatesChannel carries every published GameState.
const GameUpdatesChannel = "game_updates"

// PubSub fans game state payloads out to every subscribed session via Redis Pub/Sub.
type PubSub struct {
	rdb     *goredis.Client
	channel string
}

var _ domain.Broadcaster = (*PubSub)(nil)

func NewPubSub(rdb *goredis.Client, channel string) *PubSub {
	return &PubSub{rdb: rdb, channel: channel}
}

func (ps *PubSub) Publish(ctx context.Context, payload []byte) error {
	if err := ps.rdb.Publish(ctx, ps.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", ps.channel, err)
	}
	return nil
}

// Subscribe waits for the server to confirm the subscription before returning.
func (ps *PubSub) Subscribe(ctx context.Context) (domain.Subscription, error) {
	sub := ps.rdb.Subscribe(ctx, ps.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", ps.channel, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		sub:    sub,
		ch:     make(chan string),
		cancel: cancel,
	}
	go s.relay(subCtx)
	return s, nil
}

// Subscription relays messages of one Redis subscription. It stops at the first
// receive error instead of reconnecting; Err reports that error.
type Subscription struct {
	sub    *goredis.PubSub
	ch     chan string
	cancel context.CancelFunc
	err    error
}

var _ domain.Subscription = (*Subscription)(nil)

func (s *Subscription) relay(ctx context.Context) {
	defer close(s.ch)
	for {
		msg, err := s.sub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, goredis.ErrClosed) {
				s.err = fmt.Errorf("receive game update: %w", err)
			} else {
				s.err = domain.ErrSubscriptionClosed
			}
			return
		}
		select {
		case s.ch <- msg.Payload:
		case <-ctx.Done():
			s.err = domain.ErrSubscriptionClosed
			return
		}
	}
}

func (s *Subscription) Messages() <-chan string {
	return s.ch
}

// Err is valid once Messages is closed.
func (s *Subscription) Err() error {
	return s.err
}

func (s *Subscription) Close() error {
	s.cancel()
	if err := s.sub.Close(); err != nil {
		return fmt.Errorf("close subscription: %w", err)
	}
	return nil
}
