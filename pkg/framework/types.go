package framework

import (
	"context"
	"time"
)

// Named is implemented by things with a name, used in logs.
type Named interface {
	Name() string
}

// Runnable is a background activity which runs until the context is done.
type Runnable interface {
	Run(context.Context) error
}

// Message is posted to the loop and consumed by controllers during the
// next iteration.
type Message interface {
	// NewMessage creates an empty message of the same type.
	NewMessage() Message
}

// Controller is invoked once per loop iteration at its priority level.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc is the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(cc ControlContext) error {
	return f(cc)
}

// LoopAdder installs its controllers and runnables into a loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

// LoopControl is the part of the loop accessible from runnables and
// controllers.
type LoopControl interface {
	// PostMessage queues msg for the next iteration.
	PostMessage(Message)
	// TriggerNext starts the next iteration without waiting for the ticker.
	TriggerNext()
	// PostRunAt installs one-shot hooks run after the controllers of
	// priorityLevel.
	PostRunAt(priorityLevel int, hooks ...Controller)
}

// ControlContext is passed to controllers during an iteration.
type ControlContext interface {
	LoopControl

	// Context is canceled when the loop stops.
	Context() context.Context
	// Time is when the iteration started.
	Time() time.Time
	// PriorityLevel is the level being run.
	PriorityLevel() int
	// Messages holds the messages collected for this iteration.
	Messages() *Inbox
}

// PriorityLevels is the number of priority levels; level 0 runs first.
const PriorityLevels = 16

// Priority levels.
const (
	PrLvTop    = 0
	PrLvHigh   = 4
	PrLvNormal = 8
	PrLvLow    = 12
	PrLvIdle   = PriorityLevels - 1

	// PrLvSense services hardware.
	PrLvSense = PrLvHigh
	// PrLvControl handles commands.
	PrLvControl = PrLvNormal
	// PrLvActuate applies output.
	PrLvActuate = PrLvLow
	// PrLvPostProc reports and publishes.
	PrLvPostProc = PrLvIdle - 1
)
