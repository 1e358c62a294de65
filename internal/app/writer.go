package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pscheid92/tugofwar/internal/adapter/metrics"
	"github.com/pscheid92/tugofwar/internal/domain"
)

// Writer pushes the current state to a client and then relays every broadcast.
type Writer struct {
	store       domain.GameStore
	broadcaster domain.Broadcaster
	users       *ActiveUsers
	metrics     *metrics.WebSocketMetrics
}

// NewWriter creates a Writer. m may be nil.
func NewWriter(store domain.GameStore, broadcaster domain.Broadcaster, users *ActiveUsers, m *metrics.WebSocketMetrics) *Writer {
	return &Writer{
		store:       store,
		broadcaster: broadcaster,
		users:       users,
		metrics:     m,
	}
}

// Run subscribes before reading the snapshot, so no update published in between
// is lost. It always returns a non-nil error.
func (w *Writer) Run(ctx context.Context, out Outbound) error {
	sub, err := w.broadcaster.Subscribe(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to subscribe to game updates", "error", err)
		return fmt.Errorf("subscribe: %w", err)
	}
	defer func() { _ = sub.Close() }()

	state, err := w.store.Snapshot(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read game snapshot", "error", err)
		return fmt.Errorf("read snapshot: %w", err)
	}
	state.ActiveUsers = w.users.Load()

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := w.send(out, payload); err != nil {
		return fmt.Errorf("send snapshot: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-sub.Messages():
			if !ok {
				err := sub.Err()
				if err == nil {
					err = domain.ErrSubscriptionClosed
				}
				return fmt.Errorf("subscription ended: %w", err)
			}
			if err := w.send(out, []byte(msg)); err != nil {
				return fmt.Errorf("relay: %w", err)
			}
		}
	}
}

func (w *Writer) send(out Outbound, payload []byte) error {
	if err := out.Send(payload); err != nil {
		return err
	}
	if w.metrics != nil {
		w.metrics.MessagesRelayed.Inc()
	}
	return nil
}
