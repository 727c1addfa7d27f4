package comm

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady indicates the link is not synchronized.
	ErrNotReady = errors.New("link not ready")
	// ErrNoReply indicates the peer replied to a later request first.
	ErrNoReply = errors.New("no reply")
	// ErrShortReply indicates a reply without the expected data.
	ErrShortReply = errors.New("short reply")
)

// CommandError is a request the MCU rejected.
type CommandError struct {
	Code byte
}

// Error implements error.
func (e *CommandError) Error() string {
	return fmt.Sprintf("command %02x rejected", e.Code)
}
