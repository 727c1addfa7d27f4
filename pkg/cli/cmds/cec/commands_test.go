package cec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/cec.go/pkg/cec"
	"github.com/robotalks/cec.go/pkg/l1/msgs"
)

func TestParseFrame(t *testing.T) {
	testCases := []struct {
		name  string
		args  []string
		frame []byte
	}{
		{"colon", []string{"4f:82:10:00"}, []byte{0x4f, 0x82, 0x10, 0x00}},
		{"bytes", []string{"40", "04"}, []byte{0x40, 0x04}},
		{"poll", []string{"44"}, []byte{0x44}},
		{"empty", nil, nil},
		{"odd", []string{"4"}, nil},
		{"long", []string{"4f0102030405060708090a0b0c0d0e0f10"}, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			frame, err := parseFrame(tc.args)
			if tc.frame == nil {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.frame, frame)
		})
	}
}

func TestParseSetLogicalAddr(t *testing.T) {
	msg, err := parseSetLogicalAddr([]string{"4"})
	require.NoError(t, err)
	require.Equal(t, &msgs.CecSetLogicalAddr{Addr: 4, Enable: true}, msg)

	msg, err = parseSetLogicalAddr([]string{"0x8", "1", "off"})
	require.NoError(t, err)
	require.Equal(t, &msgs.CecSetLogicalAddr{Addr: 8, Slot: 1}, msg)

	for _, bad := range [][]string{nil, {"16"}, {"4", "2"}, {"4", "0", "maybe"}, {"1", "2", "3", "4"}} {
		_, err = parseSetLogicalAddr(bad)
		require.Error(t, err, "%v", bad)
	}
}

func TestParseCandidates(t *testing.T) {
	candidates, err := parseCandidates(nil)
	require.NoError(t, err)
	require.Nil(t, candidates)

	candidates, err = parseCandidates([]string{"4", "8", "11"})
	require.NoError(t, err)
	require.Equal(t, []byte{4, 8, 11, cec.CandidateEnd}, candidates)

	_, err = parseCandidates([]string{"x"})
	require.Error(t, err)
}
