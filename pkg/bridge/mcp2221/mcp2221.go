// Package mcp2221 accesses the registers of the IC over I2C through a
// Microchip MCP2221A USB bridge.
package mcp2221

import (
	"errors"

	"github.com/ardnew/mcp2221a"
	"github.com/golang/glog"
)

// DefaultAddr is the 7-bit I2C address of the CEC block.
const DefaultAddr = 0x34

// ErrNoDevice is returned when no MCP2221A is attached at the index.
var ErrNoDevice = errors.New("mcp2221 not found")

// I2C is the part of the MCP2221A used to reach the registers.
type I2C interface {
	I2CWrite(stop bool, addr uint8, out []byte, cnt uint16) error
	I2CReadReg(addr uint8, reg uint8, cnt uint16) ([]byte, error)
	I2CCancel() error
	Close() error
}

// Bridge implements reg.Registers over the I2C engine of the MCP2221A.
type Bridge struct {
	i2c  I2C
	addr uint8
}

// Open opens the index-th MCP2221A attached and talks to the IC at addr.
func Open(index int, addr uint8) (*Bridge, error) {
	if index < 0 || index >= len(mcp2221a.AttachedDevices(mcp2221a.VID, mcp2221a.PID)) {
		return nil, ErrNoDevice
	}
	dev, err := mcp2221a.New(byte(index), mcp2221a.VID, mcp2221a.PID)
	if err != nil {
		return nil, err
	}
	return New(dev, addr), nil
}

// New creates a Bridge on an opened I2C engine.
func New(i2c I2C, addr uint8) *Bridge {
	return &Bridge{i2c: i2c, addr: addr}
}

// Close closes the USB device.
func (b *Bridge) Close() error {
	return b.i2c.Close()
}

// ReadReg implements reg.Registers.
func (b *Bridge) ReadReg(addr uint8) (uint8, error) {
	data, err := b.i2c.I2CReadReg(b.addr, addr, 1)
	if err != nil {
		return 0, b.recover(err)
	}
	return data[0], nil
}

// WriteReg implements reg.Registers.
func (b *Bridge) WriteReg(addr, val uint8) error {
	if err := b.i2c.I2CWrite(true, b.addr, []byte{addr, val}, 2); err != nil {
		return b.recover(err)
	}
	return nil
}

// recover cancels the failed transfer so the engine leaves the NACK state
// before the next access.
func (b *Bridge) recover(err error) error {
	if cerr := b.i2c.I2CCancel(); cerr != nil {
		glog.Warningf("mcp2221: cancel transfer: %v", cerr)
	}
	return err
}
