package cecnode

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/cec.go/pkg/cec"
)

// Profile describes the device the node presents on the bus.
type Profile struct {
	DeviceType   string  `yaml:"device-type"`
	PhysicalAddr string  `yaml:"physical-addr"`
	OSDName      string  `yaml:"osd-name"`
	VendorID     uint32  `yaml:"vendor-id"`
	MenuLanguage string  `yaml:"menu-language"`
	Candidates   []uint8 `yaml:"candidates"`
	AutoAllocate bool    `yaml:"auto-allocate"`

	deviceType cec.DeviceType
	physAddr   uint16
}

// DefaultProfile is a playback device at 1.0.0.0.
func DefaultProfile() *Profile {
	return &Profile{
		DeviceType:   "playback",
		PhysicalAddr: "1.0.0.0",
		OSDName:      "cec.go",
		MenuLanguage: "eng",
		AutoAllocate: true,
	}
}

// LoadProfile reads a YAML profile. Fields missing in the file keep the
// values of DefaultProfile.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseProfile(data)
}

// ParseProfile parses and validates a YAML profile.
func ParseProfile(data []byte) (*Profile, error) {
	p := DefaultProfile()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("profile: %v", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the profile and resolves the parsed fields.
func (p *Profile) Validate() error {
	t, ok := cec.ParseDeviceType(p.DeviceType)
	if !ok {
		return fmt.Errorf("profile: unknown device type %q", p.DeviceType)
	}
	pa, err := ParsePhysicalAddr(p.PhysicalAddr)
	if err != nil {
		return fmt.Errorf("profile: %v", err)
	}
	if len(p.OSDName) > cec.MaxOSDName {
		return fmt.Errorf("profile: OSD name longer than %d", cec.MaxOSDName)
	}
	if p.MenuLanguage != "" && len(p.MenuLanguage) != 3 {
		return fmt.Errorf("profile: menu language must be an ISO 639-2 code")
	}
	if p.VendorID > 0xffffff {
		return fmt.Errorf("profile: vendor id %x exceeds 24 bits", p.VendorID)
	}
	for _, addr := range p.Candidates {
		if addr > cec.AddrUnregistered {
			return fmt.Errorf("profile: invalid candidate %d", addr)
		}
	}
	p.deviceType, p.physAddr = t, pa
	return nil
}

// Type returns the device type, valid after Validate.
func (p *Profile) Type() cec.DeviceType {
	return p.deviceType
}

// PhysAddr returns the physical address, valid after Validate.
func (p *Profile) PhysAddr() uint16 {
	return p.physAddr
}

// CandidateList returns the allocation candidates terminated by
// cec.CandidateEnd, the defaults of the device type when none are listed.
func (p *Profile) CandidateList() []uint8 {
	if len(p.Candidates) == 0 {
		return cec.DefaultCandidates(p.deviceType)
	}
	return cec.Candidates(p.Candidates...)
}

// ParsePhysicalAddr parses the dotted form, e.g. 1.0.0.0.
func ParsePhysicalAddr(s string) (uint16, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return 0, fmt.Errorf("invalid physical address %q", s)
	}
	var pa uint16
	for _, part := range parts {
		n, err := strconv.ParseUint(part, 16, 4)
		if err != nil {
			return 0, fmt.Errorf("invalid physical address %q", s)
		}
		pa = pa<<4 | uint16(n)
	}
	return pa, nil
}

// FormatPhysicalAddr is the reverse of ParsePhysicalAddr.
func FormatPhysicalAddr(pa uint16) string {
	return fmt.Sprintf("%x.%x.%x.%x", pa>>12, pa>>8&0xf, pa>>4&0xf, pa&0xf)
}
