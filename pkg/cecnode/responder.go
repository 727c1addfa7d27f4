package cecnode

import "github.com/robotalks/cec.go/pkg/cec"

// Power status operands.
const (
	powerOn      uint8 = 0x00
	powerStandby uint8 = 0x01
)

// Responder builds the replies to requests addressed to the node.
type Responder struct {
	Profile *Profile
	Standby bool
}

// Received tracks the power state from frames seen on the bus. Standby
// is entered on <Standby> and left when the stream path is set to the
// physical address of the node.
func (r *Responder) Received(msg cec.Message) {
	op, ok := msg.Opcode()
	if !ok {
		return
	}
	switch op {
	case cec.OpStandby:
		r.Standby = true
	case cec.OpSetStreamPath:
		if ops := msg.Operands(); len(ops) >= 2 && uint16(ops[0])<<8|uint16(ops[1]) == r.Profile.PhysAddr() {
			r.Standby = false
		}
	}
}

// Sent leaves standby when the node turns the display on or becomes the
// active source.
func (r *Responder) Sent(msg cec.Message) {
	if op, ok := msg.Opcode(); ok && (op == cec.OpImageViewOn || op == cec.OpActiveSource) {
		r.Standby = false
	}
}

// Respond returns the reply to req, or nil when none is due.
func (r *Responder) Respond(req cec.Message) cec.Message {
	op, ok := req.Opcode()
	if !ok {
		return nil
	}
	self, peer := req.Destination(), req.Source()
	p := r.Profile
	switch op {
	case cec.OpGivePhysicalAddress:
		return r.ReportPhysicalAddr(self)
	case cec.OpGiveOSDName:
		if p.OSDName == "" {
			return featureAbort(self, peer, op, cec.AbortRefused)
		}
		return cec.NewMessage(self, peer, cec.OpSetOSDName, []byte(p.OSDName)...)
	case cec.OpGiveDeviceVendorID:
		v := p.VendorID
		return cec.NewMessage(self, cec.AddrBroadcast, cec.OpDeviceVendorID,
			byte(v>>16), byte(v>>8), byte(v))
	case cec.OpGiveDevicePowerStatus:
		status := powerOn
		if r.Standby {
			status = powerStandby
		}
		return cec.NewMessage(self, peer, cec.OpReportPowerStatus, status)
	case cec.OpGetCECVersion:
		return cec.NewMessage(self, peer, cec.OpCECVersion, cec.Version14)
	case cec.OpGetMenuLanguage:
		if p.MenuLanguage == "" {
			return featureAbort(self, peer, op, cec.AbortUnrecognized)
		}
		return cec.NewMessage(self, cec.AddrBroadcast, cec.OpSetMenuLanguage, []byte(p.MenuLanguage)...)
	case cec.OpAbort:
		return featureAbort(self, peer, op, cec.AbortRefused)
	}
	return featureAbort(self, peer, op, cec.AbortUnrecognized)
}

// ReportPhysicalAddr is the announcement broadcast after claiming addr.
func (r *Responder) ReportPhysicalAddr(addr uint8) cec.Message {
	pa := r.Profile.PhysAddr()
	return cec.NewMessage(addr, cec.AddrBroadcast, cec.OpReportPhysicalAddress,
		byte(pa>>8), byte(pa), byte(r.Profile.Type()))
}

func featureAbort(src, dst, op, reason uint8) cec.Message {
	return cec.NewMessage(src, dst, cec.OpFeatureAbort, op, reason)
}
