package cecnode

import (
	"flag"
	"fmt"
	"os"

	"github.com/robotalks/cec.go/pkg/l1"
	"github.com/robotalks/cec.go/pkg/trace"
)

// Config defines the configurations of the node.
type Config struct {
	DeviceURL   string
	ProfilePath string
	TracePath   string
}

var defaultConfig = Config{
	DeviceURL: "sim://",
}

func init() {
	if val := os.Getenv("CEC_DEVICE"); val != "" {
		defaultConfig.DeviceURL = val
	}
	if val := os.Getenv("CEC_PROFILE"); val != "" {
		defaultConfig.ProfilePath = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.DeviceURL, "device", defaultConfig.DeviceURL, "Device URL: sim://, l0:///dev/ttyUSB0?baud=115200 or mcp2221://0?addr=0x34")
	flag.StringVar(&defaultConfig.ProfilePath, "profile", defaultConfig.ProfilePath, "YAML device profile")
	flag.StringVar(&defaultConfig.TracePath, "trace", defaultConfig.TracePath, "Record engine events to this file")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Profile loads the configured profile, DefaultProfile when none.
func (c *Config) Profile() (*Profile, error) {
	if c.ProfilePath == "" {
		p := DefaultProfile()
		return p, p.Validate()
	}
	return LoadProfile(c.ProfilePath)
}

// NewController opens the device and creates the controller.
func (c *Config) NewController(registrar l1.Registrar) (*Controller, error) {
	profile, err := c.Profile()
	if err != nil {
		return nil, err
	}
	dev, err := OpenDevice(c.DeviceURL)
	if err != nil {
		return nil, err
	}
	ctl := NewController(dev, profile, registrar)
	if c.TracePath != "" {
		f, err := os.Create(c.TracePath)
		if err != nil {
			dev.Close()
			return nil, err
		}
		rec, err := trace.NewRecorder(f, c.DeviceURL, nil)
		if err != nil {
			f.Close()
			dev.Close()
			return nil, fmt.Errorf("trace: %v", err)
		}
		ctl.Tap = rec
		ctl.closers = append(ctl.closers, f)
	}
	return ctl, nil
}
