// Package reg defines register level access to the CEC block of an HDMI
// transmitter and its register map.
package reg

import "fmt"

// Registers reads and writes whole 8-bit registers.
type Registers interface {
	ReadReg(addr uint8) (uint8, error)
	WriteReg(addr, val uint8) error
}

// FieldRegisters additionally accesses bit fields inside a register.
// mask is given in register position, val and the result are shifted down
// by shift.
type FieldRegisters interface {
	Registers
	ReadField(addr, mask, shift uint8) (uint8, error)
	WriteField(addr, mask, shift, val uint8) error
}

// Field locates a bit field in the register map.
type Field struct {
	Addr  uint8
	Mask  uint8
	Shift uint8
}

// String implements fmt.Stringer.
func (f Field) String() string {
	return fmt.Sprintf("%02x[%02x>>%d]", f.Addr, f.Mask, f.Shift)
}

// Extract gets the field value from a register value.
func (f Field) Extract(regVal uint8) uint8 {
	return (regVal & f.Mask) >> f.Shift
}

// Insert replaces the field inside a register value.
func (f Field) Insert(regVal, val uint8) uint8 {
	return (regVal &^ f.Mask) | ((val << f.Shift) & f.Mask)
}

// Fields returns r itself if it supports field access natively, otherwise
// wraps it with read-modify-write field accessors.
func Fields(r Registers) FieldRegisters {
	if f, ok := r.(FieldRegisters); ok {
		return f
	}
	return &rmw{Registers: r}
}

type rmw struct {
	Registers
}

func (r *rmw) ReadField(addr, mask, shift uint8) (uint8, error) {
	val, err := r.ReadReg(addr)
	if err != nil {
		return 0, err
	}
	return Field{Addr: addr, Mask: mask, Shift: shift}.Extract(val), nil
}

func (r *rmw) WriteField(addr, mask, shift, val uint8) error {
	if mask == 0xff {
		return r.WriteReg(addr, val<<shift)
	}
	cur, err := r.ReadReg(addr)
	if err != nil {
		return err
	}
	return r.WriteReg(addr, Field{Addr: addr, Mask: mask, Shift: shift}.Insert(cur, val))
}
