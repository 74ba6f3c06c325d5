// Package apperr defines the sentinel error categories used across
// shardkeep so callers can branch on failure kind with errors.Is instead of
// string-matching a message. Component code wraps one of these with
// fmt.Errorf's %w verb to add context; nothing outside this package should
// construct a bare instance of one of them.
package apperr

import "errors"

var (
	// ErrProtocol marks a malformed or undecodable wire payload: wrong
	// length, bad discriminant byte, truncated frame.
	ErrProtocol = errors.New("protocol error")

	// ErrValidation marks a structurally valid message whose contents are
	// out of bounds for the operation requested (e.g. a component type the
	// codec doesn't recognize).
	ErrValidation = errors.New("validation error")

	// ErrRateLimit marks a request rejected because its sender exceeded an
	// allowed rate (connection attempts, input commands).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrStateConflict marks an operation that can't proceed given the
	// server's current state (player already connected, server already
	// running, no snapshot history yet for the requested timestamp).
	ErrStateConflict = errors.New("state conflict")

	// ErrCapacity marks a resource that is full (max players reached, a
	// bounded channel with no room for another event).
	ErrCapacity = errors.New("capacity exceeded")

	// ErrInternal marks a failure in server-owned logic that isn't the
	// client's fault and isn't expected to be retryable by them.
	ErrInternal = errors.New("internal error")

	// ErrTransport marks a failure in the underlying network transport
	// (socket, listener, websocket connection) as opposed to the
	// application protocol layered on top of it.
	ErrTransport = errors.New("transport error")
)
