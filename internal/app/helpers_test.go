package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/tugofwar/internal/adapter/memory"
	"github.com/pscheid92/tugofwar/internal/domain"
)

const waitTimeout = 2 * time.Second

var errConnClosed = errors.New("connection closed")

// fakeConn is an in-process client connection. The inbound channel is unbuffered,
// so a successful send also proves the Reader finished the previous message.
type fakeConn struct {
	in        chan []byte
	out       chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	sendErr   error
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan []byte),
		out:    make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) Inbound() Inbound   { return fakeInbound{c} }
func (c *fakeConn) Outbound() Outbound { return fakeOutbound{c} }

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

type fakeInbound struct{ c *fakeConn }

func (i fakeInbound) Receive() ([]byte, error) {
	select {
	case msg := <-i.c.in:
		return msg, nil
	case <-i.c.closed:
		return nil, io.EOF
	}
}

type fakeOutbound struct{ c *fakeConn }

func (o fakeOutbound) Send(payload []byte) error {
	if o.c.sendErr != nil {
		return o.c.sendErr
	}
	if o.c.isClosed() {
		return errConnClosed
	}
	select {
	case o.c.out <- payload:
		return nil
	case <-o.c.closed:
		return errConnClosed
	}
}

func (c *fakeConn) send(t *testing.T, msg string) {
	t.Helper()
	select {
	case c.in <- []byte(msg):
	case <-time.After(waitTimeout):
		t.Fatalf("reader did not accept %s", msg)
	}
}

func (c *fakeConn) nextRaw(t *testing.T) []byte {
	t.Helper()
	select {
	case payload := <-c.out:
		return payload
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for outbound message")
		return nil
	}
}

func (c *fakeConn) next(t *testing.T) domain.GameState {
	t.Helper()
	var state domain.GameState
	require.NoError(t, json.Unmarshal(c.nextRaw(t), &state))
	return state
}

func (c *fakeConn) expectSilence(t *testing.T) {
	t.Helper()
	select {
	case payload := <-c.out:
		t.Fatalf("unexpected outbound message %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

// game wires a Supervisor to the in-memory backend.
type game struct {
	store       *memory.GameStore
	limiter     *memory.PullLimiter
	broadcaster *memory.Broadcaster
	users       *ActiveUsers
	clock       *clockwork.FakeClock
	supervisor  *Supervisor
}

func newGame() *game {
	g := &game{
		store:       memory.NewGameStore(),
		broadcaster: memory.NewBroadcaster(),
		users:       NewActiveUsers(),
		clock:       clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0)),
	}
	g.limiter = memory.NewPullLimiter(g.clock, 10, time.Second, 10*time.Second)

	reader := NewReader(g.store, g.limiter, g.broadcaster, g.users, g.clock, nil)
	writer := NewWriter(g.store, g.broadcaster, g.users, nil)
	g.supervisor = NewSupervisor(reader, writer, g.users, g.clock, nil)
	return g
}

// connect serves a new client and waits for its initial snapshot.
func (g *game) connect(t *testing.T, identity string) (*fakeConn, domain.GameState, <-chan struct{}) {
	t.Helper()
	conn := newFakeConn()
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.supervisor.Serve(context.Background(), conn, identity)
	}()
	t.Cleanup(func() { _ = conn.Close() })

	return conn, conn.next(t), done
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(waitTimeout):
		t.Fatal("session did not end")
	}
}

// stubStore overrides selected GameStore calls on top of a working store.
type stubStore struct {
	domain.GameStore
	initErr     error
	applyErr    error
	countersErr error
	snapshotErr error
}

func (s *stubStore) InitCounters(ctx context.Context) error {
	if s.initErr != nil {
		return s.initErr
	}
	return s.GameStore.InitCounters(ctx)
}

func (s *stubStore) ApplyPull(ctx context.Context, direction domain.Direction) (int64, error) {
	if s.applyErr != nil {
		return 0, s.applyErr
	}
	return s.GameStore.ApplyPull(ctx, direction)
}

func (s *stubStore) Counters(ctx context.Context) (int64, int64, error) {
	if s.countersErr != nil {
		return 0, 0, s.countersErr
	}
	return s.GameStore.Counters(ctx)
}

func (s *stubStore) Snapshot(ctx context.Context) (domain.GameState, error) {
	if s.snapshotErr != nil {
		return domain.GameState{}, s.snapshotErr
	}
	return s.GameStore.Snapshot(ctx)
}

type stubLimiter struct {
	allowed bool
	err     error
}

func (l stubLimiter) Allow(context.Context, string) (bool, error) {
	return l.allowed, l.err
}

type stubBroadcaster struct {
	domain.Broadcaster
	publishErr   error
	subscribeErr error
}

func (b *stubBroadcaster) Publish(ctx context.Context, payload []byte) error {
	if b.publishErr != nil {
		return b.publishErr
	}
	return b.Broadcaster.Publish(ctx, payload)
}

func (b *stubBroadcaster) Subscribe(ctx context.Context) (domain.Subscription, error) {
	if b.subscribeErr != nil {
		return nil, b.subscribeErr
	}
	return b.Broadcaster.Subscribe(ctx)
}

// scriptedInbound replays fixed messages and then reports EOF.
type scriptedInbound struct {
	msgs [][]byte
}

func script(msgs ...string) *scriptedInbound {
	in := &scriptedInbound{}
	for _, m := range msgs {
		in.msgs = append(in.msgs, []byte(m))
	}
	return in
}

func (s *scriptedInbound) Receive() ([]byte, error) {
	if len(s.msgs) == 0 {
		return nil, io.EOF
	}
	msg := s.msgs[0]
	s.msgs = s.msgs[1:]
	return msg, nil
}
