// Package cec provides the shell commands of CEC nodes.
package cec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/cec.go/pkg/cec"
	"github.com/robotalks/cec.go/pkg/cli/sh"
	"github.com/robotalks/cec.go/pkg/l1/msgs"
)

// parseFrame accepts the frame as one hex word or as separate bytes, e.g.
// "40:04" or "40 04".
func parseFrame(args []string) ([]byte, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("frame expected")
	}
	msg, err := cec.ParseMessage(strings.Join(args, ""))
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func parseAddr(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil || v > uint64(cec.AddrUnregistered) {
		return 0, fmt.Errorf("invalid logical address %q", s)
	}
	return uint8(v), nil
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("on or off expected: %q", s)
}

func parseSetLogicalAddr(args []string) (*msgs.CecSetLogicalAddr, error) {
	if len(args) < 1 || len(args) > 3 {
		return nil, fmt.Errorf("ADDR [SLOT [on|off]] expected")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return nil, err
	}
	msg := &msgs.CecSetLogicalAddr{Addr: uint32(addr), Enable: true}
	if len(args) > 1 {
		slot, err := strconv.ParseUint(args[1], 10, 8)
		if err != nil || slot >= cec.LogicalAddrSlots {
			return nil, fmt.Errorf("invalid slot %q", args[1])
		}
		msg.Slot = uint32(slot)
	}
	if len(args) > 2 {
		if msg.Enable, err = parseOnOff(args[2]); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

func parseCandidates(args []string) ([]byte, error) {
	if len(args) == 0 {
		return nil, nil
	}
	addrs := make([]uint8, 0, len(args))
	for _, arg := range args {
		addr, err := parseAddr(arg)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return cec.Candidates(addrs...), nil
}

func sendCmd(name, alias string, queue bool) ishell.Cmd {
	return ishell.Cmd{
		Name:    name,
		Aliases: []string{alias},
		Help:    "HEX...",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			frame, err := parseFrame(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, &msgs.CecSend{Frame: frame, Queue: queue})
		}),
	}
}

func simpleCmd(name, alias string, newMsg func() msgs.SerializableMessage) ishell.Cmd {
	return ishell.Cmd{
		Name:    name,
		Aliases: []string{alias},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, newMsg())
		}),
	}
}

var (
	// SendCmd sends a frame, failing when the transmitter is busy.
	SendCmd = sendCmd("cec.send", "cs", false)
	// QueueCmd submits a frame to the transmit queue.
	QueueCmd = sendCmd("cec.queue", "cq", true)

	// ResendCmd resends the last loaded frame.
	ResendCmd = simpleCmd("cec.resend", "cr", func() msgs.SerializableMessage { return &msgs.CecResend{} })
	// ScanCmd polls all logical addresses.
	ScanCmd = simpleCmd("cec.scan", "cscan", func() msgs.SerializableMessage { return &msgs.CecScan{} })
	// StatusCmd queries the controller status.
	StatusCmd = simpleCmd("cec.status", "cst", func() msgs.SerializableMessage { return &msgs.CecStatusQuery{} })
	// ClearCmd drops the queued frames.
	ClearCmd = simpleCmd("cec.clear", "cclr", func() msgs.SerializableMessage { return &msgs.CecClearQueue{} })

	// EnableCmd turns bus participation on or off.
	EnableCmd = ishell.Cmd{
		Name:    "cec.enable",
		Aliases: []string{"ce"},
		Help:    "on|off",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			on := true
			if len(c.Args) > 0 {
				var err error
				if on, err = parseOnOff(c.Args[0]); err != nil {
					c.Err(err)
					return
				}
			}
			sh.DoCommand(c, &msgs.CecEnable{On: on})
		}),
	}

	// LogicalAddrCmd programs a logical address slot.
	LogicalAddrCmd = ishell.Cmd{
		Name:    "cec.la",
		Aliases: []string{"cla"},
		Help:    "ADDR [SLOT [on|off]]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			msg, err := parseSetLogicalAddr(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, msg)
		}),
	}

	// AllocCmd claims a logical address, from the node defaults when no
	// candidates are given.
	AllocCmd = ishell.Cmd{
		Name:    "cec.alloc",
		Aliases: []string{"ca"},
		Help:    "[ADDR...]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			candidates, err := parseCandidates(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, &msgs.CecAllocate{Candidates: candidates})
		}),
	}
)

func init() {
	sh.AddCmds(
		&SendCmd,
		&QueueCmd,
		&ResendCmd,
		&EnableCmd,
		&LogicalAddrCmd,
		&AllocCmd,
		&ScanCmd,
		&StatusCmd,
		&ClearCmd,
	)
}
