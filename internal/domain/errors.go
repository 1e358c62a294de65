package domain

import "errors"

var (
	ErrMalformedMessage = errors.New("malformed message")
	ErrUnknownAction    = errors.New("unknown action")
	ErrUnknownDirection = errors.New("unknown direction")

	// ErrPartialUpdate means a pull counter was incremented but the position was not.
	ErrPartialUpdate = errors.New("partial game state update")

	ErrSubscriptionClosed = errors.New("subscription closed")
)
