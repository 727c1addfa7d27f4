package cec

// CEC opcodes used by the controller and the responder.
const (
	OpFeatureAbort          uint8 = 0x00
	OpImageViewOn           uint8 = 0x04
	OpStandby               uint8 = 0x36
	OpSetOSDName            uint8 = 0x47
	OpGiveOSDName           uint8 = 0x46
	OpActiveSource          uint8 = 0x82
	OpGivePhysicalAddress   uint8 = 0x83
	OpSetStreamPath         uint8 = 0x86
	OpReportPhysicalAddress uint8 = 0x84
	OpDeviceVendorID        uint8 = 0x87
	OpGiveDeviceVendorID    uint8 = 0x8c
	OpGiveDevicePowerStatus uint8 = 0x8f
	OpReportPowerStatus     uint8 = 0x90
	OpGetMenuLanguage       uint8 = 0x91
	OpSetMenuLanguage       uint8 = 0x32
	OpCECVersion            uint8 = 0x9e
	OpGetCECVersion         uint8 = 0x9f
	OpAbort                 uint8 = 0xff
)

// Feature abort reasons.
const (
	AbortUnrecognized uint8 = 0
	AbortRefused      uint8 = 4
)

// CEC versions.
const (
	Version13a uint8 = 0x04
	Version14  uint8 = 0x05
)

// requestOpcodes mandate a directly addressed reply from the follower.
var requestOpcodes = map[uint8]bool{
	OpGiveOSDName:           true,
	OpGivePhysicalAddress:   true,
	OpGiveDeviceVendorID:    true,
	OpGiveDevicePowerStatus: true,
	OpGetMenuLanguage:       true,
	OpGetCECVersion:         true,
	OpAbort:                 true,
}

// IsRequest reports whether op asks the follower for a reply.
func IsRequest(op uint8) bool {
	return requestOpcodes[op]
}

// DeviceType is the primary device type reported in Report Physical Address.
type DeviceType uint8

// Device types.
const (
	DeviceTV          DeviceType = 0
	DeviceRecording   DeviceType = 1
	DeviceTuner       DeviceType = 3
	DevicePlayback    DeviceType = 4
	DeviceAudioSystem DeviceType = 5
)

var deviceTypeNames = map[string]DeviceType{
	"tv":           DeviceTV,
	"recording":    DeviceRecording,
	"tuner":        DeviceTuner,
	"playback":     DevicePlayback,
	"audio-system": DeviceAudioSystem,
}

// ParseDeviceType parses the names used in device profiles.
func ParseDeviceType(name string) (DeviceType, bool) {
	t, ok := deviceTypeNames[name]
	return t, ok
}

// DefaultCandidates returns the standard logical address candidates of a
// device type, terminated by CandidateEnd.
func DefaultCandidates(t DeviceType) []uint8 {
	switch t {
	case DeviceTV:
		return Candidates(AddrTV, AddrSpecific)
	case DeviceRecording:
		return Candidates(AddrRecording1, AddrRecording2, AddrRecording3)
	case DeviceTuner:
		return Candidates(AddrTuner1, AddrTuner2, AddrTuner3, AddrTuner4)
	case DevicePlayback:
		return Candidates(AddrPlayback1, AddrPlayback2, AddrPlayback3)
	case DeviceAudioSystem:
		return Candidates(AddrAudioSystem)
	}
	return Candidates()
}
