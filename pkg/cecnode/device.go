package cecnode

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/tarm/serial"

	"github.com/robotalks/cec.go/pkg/bridge/mcp2221"
	"github.com/robotalks/cec.go/pkg/cec/reg"
	"github.com/robotalks/cec.go/pkg/cec/sim"
	"github.com/robotalks/cec.go/pkg/l0/comm"
)

// DefaultBaud is the baud rate of the L0 bridge MCU.
const DefaultBaud = 115200

// Device is an opened register backend.
type Device struct {
	URL  string
	Regs reg.Registers
	// IRQ delivers the interrupt causes forwarded by the backend. It is nil
	// when the backend can only be polled.
	IRQ <-chan uint8
	// Chip is set for sim:// devices.
	Chip *sim.Chip

	run    func(context.Context) error
	closer io.Closer
}

// OpenDevice opens a register backend by URL:
//
//	sim://?present=0,5
//	l0:///dev/ttyUSB0?baud=115200
//	mcp2221://0?addr=0x34
func OpenDevice(deviceURL string) (*Device, error) {
	u, err := url.Parse(deviceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid device URL: %v", err)
	}
	query := u.Query()
	dev := &Device{URL: deviceURL}
	switch u.Scheme {
	case "sim":
		var present []uint8
		if list := query.Get("present"); list != "" {
			for _, s := range strings.Split(list, ",") {
				addr, err := strconv.ParseUint(s, 0, 4)
				if err != nil {
					return nil, fmt.Errorf("invalid present address %q", s)
				}
				present = append(present, uint8(addr))
			}
		}
		dev.Chip = sim.New(present...)
		dev.Regs = dev.Chip
	case "l0":
		baud := DefaultBaud
		if s := query.Get("baud"); s != "" {
			if baud, err = strconv.Atoi(s); err != nil {
				return nil, fmt.Errorf("invalid baud %q", s)
			}
		}
		port, err := serial.OpenPort(&serial.Config{Name: u.Path, Baud: baud})
		if err != nil {
			return nil, fmt.Errorf("open %s: %v", u.Path, err)
		}
		bridge := comm.NewBridge(port)
		dev.Regs, dev.IRQ, dev.run, dev.closer = bridge, bridge.IRQ(), bridge.Run, port
	case "mcp2221":
		index, addr := 0, uint64(mcp2221.DefaultAddr)
		if u.Host != "" {
			if index, err = strconv.Atoi(u.Host); err != nil {
				return nil, fmt.Errorf("invalid device index %q", u.Host)
			}
		}
		if s := query.Get("addr"); s != "" {
			if addr, err = strconv.ParseUint(s, 0, 7); err != nil {
				return nil, fmt.Errorf("invalid I2C address %q", s)
			}
		}
		bridge, err := mcp2221.Open(index, uint8(addr))
		if err != nil {
			return nil, err
		}
		dev.Regs, dev.closer = bridge, bridge
	default:
		return nil, fmt.Errorf("unknown device URL scheme: %q", u.Scheme)
	}
	return dev, nil
}

// Run implements Runnable. The device is closed when ctx is done.
func (d *Device) Run(ctx context.Context) error {
	defer d.Close()
	if d.run != nil {
		return d.run(ctx)
	}
	<-ctx.Done()
	return ctx.Err()
}

// Close releases the backend.
func (d *Device) Close() error {
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}
