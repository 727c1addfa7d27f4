// Package cec implements the host side of an HDMI-CEC controller block:
// the transmit queue and state machine, resends after lost arbitration,
// logical address claiming and the receive slot dispatcher.
//
// The Controller is driven from a single context. Operations load frames
// into the hardware and return; completions are discovered by Poll or
// delivered by OnInterrupt, and reported to the Notifier as Events.
package cec
