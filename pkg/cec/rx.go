package cec

import (
	"github.com/golang/glog"

	"github.com/robotalks/cec.go/pkg/cec/reg"
)

// RxSlots is the number of hardware receive slots.
const RxSlots = 3

const rxReadyMask = 1<<RxSlots - 1

// dispatchRx delivers the frames waiting in the receive slots in the order
// they arrived on the bus, as given by the frame order tags.
func (c *Controller) dispatchRx() error {
	ready, err := c.readReg(reg.RxReady)
	if err != nil {
		return err
	}
	if ready&rxReadyMask == 0 {
		return nil
	}
	var tags [RxSlots]uint8
	for slot := range tags {
		if ready&(1<<uint(slot)) == 0 {
			continue
		}
		if tags[slot], err = c.readField(reg.RxTag(slot)); err != nil {
			return err
		}
	}
	for seq := uint8(1); seq <= RxSlots; seq++ {
		slot := -1
		for s, tag := range tags {
			if ready&(1<<uint(s)) != 0 && tag == seq {
				slot = s
				break
			}
		}
		if slot < 0 {
			break
		}
		if err = c.receive(slot); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) receive(slot int) error {
	n, err := c.readField(reg.RxLength(slot))
	if err != nil {
		return err
	}
	var msg Message
	if n == 0 || n > MaxMessageSize {
		glog.Warningf("cec: rx slot %d: invalid frame length %d", slot, n)
	} else {
		msg = make(Message, n)
		base := reg.RxSlotAddr(slot)
		for i := range msg {
			if msg[i], err = c.readReg(base + uint8(i)); err != nil {
				return err
			}
		}
	}
	if err = c.release(slot); err != nil {
		return err
	}
	if msg != nil {
		glog.V(2).Infof("cec: rx %s", msg)
		c.notify(c.rxEvent(msg))
	}
	return nil
}

// release hands the slot back to the hardware by toggling its ready flag.
func (c *Controller) release(slot int) error {
	f := reg.RxReadyFlag(slot)
	v, err := c.readField(f)
	if err != nil {
		return err
	}
	return c.writeField(f, v^1)
}

func (c *Controller) rxEvent(msg Message) Event {
	op, ok := msg.Opcode()
	if ok && !msg.IsBroadcast() && IsRequest(op) && c.ownsAddr(msg.Destination()) {
		return RxMsgRespond{Msg: msg}
	}
	return RxMsg{Msg: msg}
}

func (c *Controller) ownsAddr(addr uint8) bool {
	for _, la := range c.logAddrs {
		if la.Enabled && la.Addr == addr {
			return true
		}
	}
	return false
}
