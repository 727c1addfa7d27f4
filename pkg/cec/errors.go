package cec

import "errors"

// paramError is the class of errors rejected before any register access.
type paramError string

func (e paramError) Error() string { return string(e) }

// Is makes every parameter error match ErrInvalidParam.
func (e paramError) Is(target error) bool {
	return target == ErrInvalidParam
}

var (
	// ErrInvalidParam indicates a malformed argument.
	ErrInvalidParam error = paramError("invalid parameter")
	// ErrInvalidLength indicates a frame shorter than 1 or longer than
	// MaxMessageSize bytes. It matches ErrInvalidParam.
	ErrInvalidLength error = paramError("invalid message length")
	// ErrBusy indicates a transmission or an address operation is in progress.
	ErrBusy = errors.New("busy")
	// ErrQueueFull indicates the transmit queue can't hold the frame.
	ErrQueueFull = errors.New("transmit queue full")
	// ErrNoFrame indicates nothing has been loaded for transmission yet.
	ErrNoFrame = errors.New("no frame to resend")
)
