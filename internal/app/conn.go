package app

// Inbound is the read half of a client connection.
type Inbound interface {
	// Receive blocks until the next text message arrives. Any error is terminal.
	Receive() ([]byte, error)
}

// Outbound is the write half of a client connection.
type Outbound interface {
	// Send writes one text message. Any error is terminal.
	Send(payload []byte) error
}

// Conn is a client connection split into halves that are each owned by exactly one goroutine.
type Conn interface {
	Inbound() Inbound
	Outbound() Outbound
	Close() error
}
