package domain

import (
	"encoding/json"
	"fmt"
)

// ActionPull is the only client action that has an effect.
const ActionPull = "pull"

type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Delta is the signed position increment for one pull in this direction.
func (d Direction) Delta() int64 {
	switch d {
	case DirectionLeft:
		return -1
	case DirectionRight:
		return 1
	default:
		return 0
	}
}

func (d Direction) Valid() bool {
	return d == DirectionLeft || d == DirectionRight
}

// GameState is the snapshot sent to every client on connect and after every accepted pull.
type GameState struct {
	Position    int64 `json:"position"`
	LeftPulls   int64 `json:"left_pulls"`
	RightPulls  int64 `json:"right_pulls"`
	ActiveUsers int   `json:"active_users"`
}

// PullRequest is an inbound client message.
type PullRequest struct {
	Action    string `json:"action"`
	Direction string `json:"direction"`
}

// ParsePull decodes a client message and checks that it is a pull action.
// The direction is validated separately by Target, after rate limiting.
func ParsePull(data []byte) (PullRequest, error) {
	var req PullRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return PullRequest{}, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	if req.Action != ActionPull {
		return PullRequest{}, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
	return req, nil
}

// Target returns the pull direction, or ErrUnknownDirection.
func (r PullRequest) Target() (Direction, error) {
	d := Direction(r.Direction)
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDirection, r.Direction)
	}
	return d, nil
}
