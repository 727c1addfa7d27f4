package cecnode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/cec.go/pkg/cec"
)

func TestParsePhysicalAddr(t *testing.T) {
	testCases := []struct {
		in  string
		pa  uint16
		err bool
	}{
		{"0.0.0.0", 0x0000, false},
		{"1.0.0.0", 0x1000, false},
		{"2.1.f.0", 0x21f0, false},
		{"1.0.0", 0, true},
		{"1.0.0.10", 0, true},
		{"a.b.c.g", 0, true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			pa, err := ParsePhysicalAddr(tc.in)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.pa, pa)
			require.Equal(t, tc.in, FormatPhysicalAddr(pa))
		})
	}
}

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile([]byte(`
device-type: tuner
physical-addr: 3.0.0.0
osd-name: Tuner
vendor-id: 0x000ce7
candidates: [6, 7]
`))
	require.NoError(t, err)
	require.Equal(t, cec.DeviceTuner, p.Type())
	require.Equal(t, uint16(0x3000), p.PhysAddr())
	require.Equal(t, uint32(0x000ce7), p.VendorID)
	require.Equal(t, "eng", p.MenuLanguage)
	require.True(t, p.AutoAllocate)
	require.Equal(t, []uint8{6, 7, cec.CandidateEnd}, p.CandidateList())

	p, err = ParseProfile(nil)
	require.NoError(t, err)
	require.Equal(t, cec.DefaultCandidates(cec.DevicePlayback), p.CandidateList())

	_, err = ParseProfile([]byte("osd-name: fourteen-chars\n"))
	require.NoError(t, err)
	_, err = ParseProfile([]byte("osd-name: fifteen-chars-x\n"))
	require.Error(t, err)

	for _, bad := range []string{
		"device-type: toaster\n",
		"physical-addr: 1.0\n",
		"menu-language: en\n",
		"vendor-id: 0x1000000\n",
		"candidates: [16]\n",
	} {
		_, err = ParseProfile([]byte(bad))
		require.Error(t, err, bad)
	}
}

func TestResponder(t *testing.T) {
	p := DefaultProfile()
	p.VendorID = 0x0010fa
	require.NoError(t, p.Validate())
	r := &Responder{Profile: p}
	testCases := []struct {
		name  string
		req   cec.Message
		reply cec.Message
	}{
		{"physical-addr", cec.Message{0x04, cec.OpGivePhysicalAddress},
			cec.Message{0x4f, cec.OpReportPhysicalAddress, 0x10, 0x00, 0x04}},
		{"osd-name", cec.Message{0x04, cec.OpGiveOSDName},
			cec.Message{0x40, cec.OpSetOSDName, 'c', 'e', 'c', '.', 'g', 'o'}},
		{"vendor-id", cec.Message{0x04, cec.OpGiveDeviceVendorID},
			cec.Message{0x4f, cec.OpDeviceVendorID, 0x00, 0x10, 0xfa}},
		{"power-status", cec.Message{0x04, cec.OpGiveDevicePowerStatus},
			cec.Message{0x40, cec.OpReportPowerStatus, 0x00}},
		{"cec-version", cec.Message{0x54, cec.OpGetCECVersion},
			cec.Message{0x45, cec.OpCECVersion, cec.Version14}},
		{"menu-language", cec.Message{0x04, cec.OpGetMenuLanguage},
			cec.Message{0x4f, cec.OpSetMenuLanguage, 'e', 'n', 'g'}},
		{"abort", cec.Message{0x04, cec.OpAbort},
			cec.Message{0x40, cec.OpFeatureAbort, cec.OpAbort, cec.AbortRefused}},
		{"unknown", cec.Message{0x04, 0x70},
			cec.Message{0x40, cec.OpFeatureAbort, 0x70, cec.AbortUnrecognized}},
		{"poll", cec.Message{0x44}, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.reply, r.Respond(tc.req))
		})
	}

	r.Standby = true
	require.Equal(t, cec.Message{0x40, cec.OpReportPowerStatus, 0x01},
		r.Respond(cec.Message{0x04, cec.OpGiveDevicePowerStatus}))
}

func TestResponderPowerState(t *testing.T) {
	p := DefaultProfile()
	require.NoError(t, p.Validate())
	r := &Responder{Profile: p}
	power := func() uint8 {
		return r.Respond(cec.Message{0x04, cec.OpGiveDevicePowerStatus})[2]
	}
	testCases := []struct {
		name     string
		received cec.Message
		sent     cec.Message
		standby  bool
	}{
		{"standby", cec.Message{0x0f, cec.OpStandby}, nil, true},
		{"other-stream-path", cec.Message{0x0f, cec.OpSetStreamPath, 0x20, 0x00}, nil, true},
		{"own-stream-path", cec.Message{0x0f, cec.OpSetStreamPath, 0x10, 0x00}, nil, false},
		{"standby-again", cec.Message{0x0f, cec.OpStandby}, nil, true},
		{"image-view-on", nil, cec.Message{0x40, cec.OpImageViewOn}, false},
		{"standby-directed", cec.Message{0x04, cec.OpStandby}, nil, true},
		{"active-source", nil, cec.Message{0x4f, cec.OpActiveSource, 0x10, 0x00}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.received != nil {
				r.Received(tc.received)
			}
			if tc.sent != nil {
				r.Sent(tc.sent)
			}
			require.Equal(t, tc.standby, r.Standby)
			want := powerOn
			if tc.standby {
				want = powerStandby
			}
			require.Equal(t, want, power())
		})
	}
}

func TestOpenDevice(t *testing.T) {
	dev, err := OpenDevice("sim://?present=0,5")
	require.NoError(t, err)
	require.Equal(t, uint16(1<<0|1<<5), dev.Chip.Present)
	require.Nil(t, dev.IRQ)

	for _, bad := range []string{"usb://0", "sim://?present=x", "mcp2221://a"} {
		_, err = OpenDevice(bad)
		require.Error(t, err, bad)
	}
}
