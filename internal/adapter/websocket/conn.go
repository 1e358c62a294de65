package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/tugofwar/internal/app"
)

const (
	writeDeadline  = 5 * time.Second
	pingInterval   = 30 * time.Second
	pongDeadline   = 60 * time.Second
	maxMessageSize = 4096
)

// Conn adapts a gorilla connection to app.Conn. Reads happen only through
// Inbound and data writes only through Outbound; pings go out as control frames,
// which gorilla allows concurrently with other writes.
type Conn struct {
	ws        *websocket.Conn
	clock     clockwork.Clock
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

var _ app.Conn = (*Conn)(nil)

// NewConn configures deadlines on ws and starts its keepalive pings.
func NewConn(ws *websocket.Conn, clock clockwork.Clock) *Conn {
	c := &Conn{
		ws:    ws,
		clock: clock,
		done:  make(chan struct{}),
	}

	ws.SetReadLimit(maxMessageSize)
	c.refreshReadDeadline()
	ws.SetPongHandler(func(string) error {
		c.refreshReadDeadline()
		return nil
	})

	c.wg.Add(1)
	go c.keepalive()
	return c
}

func (c *Conn) Inbound() app.Inbound   { return inbound{c} }
func (c *Conn) Outbound() app.Outbound { return outbound{c} }

// Close stops the pings, sends a best-effort close frame and closes the socket.
// Blocked reads and writes on either half fail afterwards.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.wg.Wait()

		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, c.clock.Now().Add(writeDeadline))
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) keepalive() {
	defer c.wg.Done()

	ticker := c.clock.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.Chan():
			if err := c.ws.WriteControl(websocket.PingMessage, nil, c.clock.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}

func (c *Conn) refreshReadDeadline() {
	_ = c.ws.SetReadDeadline(c.clock.Now().Add(pongDeadline))
}

type inbound struct{ c *Conn }

// Receive returns the next text message. Binary frames are skipped.
func (i inbound) Receive() ([]byte, error) {
	for {
		messageType, data, err := i.c.ws.ReadMessage()
		if err != nil {
			return nil, err
		}
		i.c.refreshReadDeadline()
		if messageType == websocket.TextMessage {
			return data, nil
		}
	}
}

type outbound struct{ c *Conn }

func (o outbound) Send(payload []byte) error {
	_ = o.c.ws.SetWriteDeadline(o.c.clock.Now().Add(writeDeadline))
	return o.c.ws.WriteMessage(websocket.TextMessage, payload)
}
