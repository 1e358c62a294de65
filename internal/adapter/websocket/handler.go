package websocket

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/tugofwar/internal/adapter/metrics"
	"github.com/pscheid92/tugofwar/internal/app"
)

const (
	readBufferSize  = 1024
	writeBufferSize = 1024
)

// SessionServer runs a game session on an upgraded connection until it ends.
type SessionServer interface {
	Serve(ctx context.Context, conn app.Conn, identity string)
}

// Handler admits, upgrades and serves game connections.
type Handler struct {
	upgrader websocket.Upgrader
	sessions SessionServer
	limits   *ConnectionLimits
	clock    clockwork.Clock
	metrics  *metrics.WebSocketMetrics
}

// NewHandler creates the /ws handler. m may be nil.
func NewHandler(sessions SessionServer, limits *ConnectionLimits, checkOrigin func(*http.Request) bool, clock clockwork.Clock, m *metrics.WebSocketMetrics) *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			CheckOrigin:     checkOrigin,
		},
		sessions: sessions,
		limits:   limits,
		clock:    clock,
		metrics:  m,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)

	if ok, reason := h.limits.Acquire(ip); !ok {
		h.reject(w, ip, reason)
		return
	}
	defer h.limits.Release(ip)

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		slog.WarnContext(r.Context(), "WebSocket upgrade failed", "ip", ip, "error", err)
		return
	}

	h.sessions.Serve(r.Context(), NewConn(ws, h.clock), ip)
}

func (h *Handler) reject(w http.ResponseWriter, ip string, reason LimitReason) {
	slog.Warn("WebSocket connection rejected", "ip", ip, "reason", reason)
	if h.metrics != nil {
		h.metrics.ConnectionsRejected.WithLabelValues(string(reason)).Inc()
	}

	status := http.StatusTooManyRequests
	if reason == LimitReasonGlobal {
		status = http.StatusServiceUnavailable
	}
	http.Error(w, http.StatusText(status), status)
}

// clientIP is the peer address without its port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
