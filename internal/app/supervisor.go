package app

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/tugofwar/internal/adapter/metrics"
	"github.com/pscheid92/tugofwar/internal/platform/correlation"
)

// Supervisor runs a Reader and a Writer for each connection.
type Supervisor struct {
	reader  *Reader
	writer  *Writer
	users   *ActiveUsers
	clock   clockwork.Clock
	metrics *metrics.WebSocketMetrics
}

// NewSupervisor creates a Supervisor. m may be nil.
func NewSupervisor(reader *Reader, writer *Writer, users *ActiveUsers, clock clockwork.Clock, m *metrics.WebSocketMetrics) *Supervisor {
	return &Supervisor{
		reader:  reader,
		writer:  writer,
		users:   users,
		clock:   clock,
		metrics: m,
	}
}

// Serve blocks until either half of the session finishes. It then closes conn and
// returns without waiting for the other half, which fails on its next read or write.
func (s *Supervisor) Serve(ctx context.Context, conn Conn, identity string) {
	ctx = correlation.WithPeer(correlation.WithID(ctx, correlation.NewID()), identity)
	started := s.clock.Now()

	active := s.users.Inc()
	if s.metrics != nil {
		s.metrics.ActiveConnections.Inc()
	}
	slog.InfoContext(ctx, "Client connected", "active_users", active)

	readerDone := make(chan error, 1)
	writerDone := make(chan error, 1)
	go func() { readerDone <- s.reader.Run(ctx, conn.Inbound(), identity) }()
	go func() { writerDone <- s.writer.Run(ctx, conn.Outbound()) }()

	var (
		half string
		err  error
	)
	select {
	case err = <-readerDone:
		half = "reader"
	case err = <-writerDone:
		half = "writer"
	}

	active = s.users.Dec()
	if s.metrics != nil {
		s.metrics.ActiveConnections.Dec()
		s.metrics.SessionDuration.Observe(s.clock.Since(started).Seconds())
	}
	_ = conn.Close()

	slog.InfoContext(ctx, "Client disconnected",
		"ended_by", half,
		"reason", err,
		"active_users", active)
}
