package engine

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidMove is reported when the server rejects a move.
	ErrInvalidMove = errors.New("invalid move")

	// ErrProtocolDesync marks a server response that contradicts local
	// session state. Local state is overwritten from the server when it occurs.
	ErrProtocolDesync = errors.New("protocol desync")
)

// NetworkFailure is a transport, status or decode error on a request.
type NetworkFailure struct {
	Op     string // "move" or "reset"
	Status int    // HTTP status, 0 when no response was received
	Err    error
}

func (e *NetworkFailure) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s request failed: HTTP %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Op, e.Err)
}

func (e *NetworkFailure) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request hit its deadline.
func (e *NetworkFailure) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// IsNetworkFailure reports whether err is or wraps a *NetworkFailure.
func IsNetworkFailure(err error) bool {
	var nf *NetworkFailure
	return errors.As(err, &nf)
}
