package reg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFieldInsertExtract(t *testing.T) {
	testCases := []struct {
		name   string
		field  Field
		regVal uint8
		val    uint8
		expect uint8
	}{
		{"low bit set", CtrlEnable, 0x02, 1, 0x03},
		{"low bit clear", CtrlEnable, 0x03, 0, 0x02},
		{"shifted", CtrlReset, 0x01, 1, 0x03},
		{"masked overflow", TxLength, 0xe0, 0x3f, 0xff},
		{"slot 2 ready", RxReadyFlag(2), 0x01, 1, 0x05},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := tc.field.Insert(tc.regVal, tc.val)
			require.Equal(t, tc.expect, out)
			require.Equal(t, tc.val&(tc.field.Mask>>tc.field.Shift), tc.field.Extract(out))
		})
	}
}

func TestFieldsReadModifyWrite(t *testing.T) {
	var f File
	f.Poke(Ctrl, 0x01)
	fr := Fields(&f)

	require.NoError(t, fr.WriteField(CtrlReset.Addr, CtrlReset.Mask, CtrlReset.Shift, 1))
	require.Equal(t, uint8(0x03), f.Peek(Ctrl))
	require.Equal(t, 1, f.Reads)
	require.Equal(t, 1, f.Writes)

	v, err := fr.ReadField(CtrlEnable.Addr, CtrlEnable.Mask, CtrlEnable.Shift)
	require.NoError(t, err)
	require.Equal(t, uint8(1), v)

	require.NoError(t, fr.WriteField(TxBuf, 0xff, 0, 0x4f))
	require.Equal(t, uint8(0x4f), f.Peek(TxBuf))
	require.Equal(t, 2, f.Reads, "full-width field write must not read first")
}

func TestRxSlotLayout(t *testing.T) {
	require.Equal(t, uint8(0x20), RxSlotAddr(0))
	require.Equal(t, uint8(0x40), RxSlotAddr(1))
	require.Equal(t, uint8(0x60), RxSlotAddr(2))
	require.Equal(t, uint8(0x50), RxLength(1).Addr)
	require.Equal(t, uint8(0x71), RxTag(2).Addr)
	require.Equal(t, "09[04>>2]", RxReadyFlag(2).String())
}
