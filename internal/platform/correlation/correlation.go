package correlation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

type (
	idKey   struct{}
	peerKey struct{}
)

// NewID returns a short connection ID taken from a random UUID.
func NewID() string {
	return uuid.NewString()[:8]
}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// WithPeer records the client identity (its IP) that pulls are rate limited by.
func WithPeer(ctx context.Context, peer string) context.Context {
	return context.WithValue(ctx, peerKey{}, peer)
}

// ID reports the connection ID carried by ctx. Empty IDs count as absent.
func ID(ctx context.Context) (string, bool) {
	return value(ctx, idKey{})
}

func Peer(ctx context.Context) (string, bool) {
	return value(ctx, peerKey{})
}

func value(ctx context.Context, key any) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}

// Handler decorates records with "conn_id" and "peer" taken from the context,
// so session logs can be grepped per connection.
type Handler struct {
	inner slog.Handler
}

func NewHandler(inner slog.Handler) *Handler {
	return &Handler{inner: inner}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ID(ctx); ok {
		r.AddAttrs(slog.String("conn_id", id))
	}
	if peer, ok := Peer(ctx); ok {
		r.AddAttrs(slog.String("peer", peer))
	}
	if err := h.inner.Handle(ctx, r); err != nil {
		return fmt.Errorf("correlation handler: %w", err)
	}
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{inner: h.inner.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name)}
}
