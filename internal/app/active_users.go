package app

import "sync/atomic"

// ActiveUsers counts live sessions. One instance is shared by every Supervisor
// serving the same game.
type ActiveUsers struct {
	n atomic.Int64
}

func NewActiveUsers() *ActiveUsers {
	return &ActiveUsers{}
}

// Inc registers a session and returns the new count.
func (a *ActiveUsers) Inc() int {
	return int(a.n.Add(1))
}

// Dec unregisters a session and returns the new count.
func (a *ActiveUsers) Dec() int {
	return int(a.n.Add(-1))
}

func (a *ActiveUsers) Load() int {
	return int(a.n.Load())
}
