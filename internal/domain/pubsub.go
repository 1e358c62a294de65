package domain

import "context"

// Broadcaster publishes game state payloads to every subscribed session.
type Broadcaster interface {
	Publish(ctx context.Context, payload []byte) error

	// Subscribe returns once the subscription is live, so anything published
	// afterwards is delivered on the returned Subscription.
	Subscribe(ctx context.Context) (Subscription, error)
}

// Subscription is a live feed of published payloads.
type Subscription interface {
	// Messages is closed when the subscription ends; Err then reports why.
	Messages() <-chan string
	Err() error
	Close() error
}
