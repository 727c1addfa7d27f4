package cec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/cec.go/pkg/cec"
	"github.com/robotalks/cec.go/pkg/cec/sim"
)

func TestAllocateSingleCandidate(t *testing.T) {
	testCases := []struct {
		name    string
		present []uint8
		expect  cec.LogAddrAlloc
	}{
		{"free", nil, cec.LogAddrAlloc{Status: cec.AllocOK, Addr: 3}},
		{"taken", []uint8{3}, cec.LogAddrAlloc{Status: cec.AllocNoFreeAddr, Addr: cec.AddrUnregistered, Taken: 1 << 3}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, tc.present...)
			require.NoError(t, env.ctl.AllocateLogicalAddr([]uint8{3, 0xFF}))
			require.Equal(t, []byte{0x33}, env.chip.LastSent())
			require.Equal(t, cec.OperLogAddrAlloc, env.ctl.Status().Operation)
			require.Equal(t, []cec.Event{tc.expect}, env.poll())
			require.Equal(t, cec.OperNone, env.ctl.Status().Operation)
			require.Equal(t, cec.TxIdle, env.ctl.Status().TxState)
		})
	}
}

func TestAllocateWalksCandidates(t *testing.T) {
	env := newTestEnv(t, cec.AddrPlayback1, cec.AddrPlayback2)
	require.NoError(t, env.ctl.AllocateLogicalAddr(cec.DefaultCandidates(cec.DevicePlayback)))
	require.Equal(t, []cec.Event{cec.LogAddrAlloc{
		Status: cec.AllocOK,
		Addr:   cec.AddrPlayback3,
		Taken:  1<<cec.AddrPlayback1 | 1<<cec.AddrPlayback2,
	}}, env.settle())
	require.Equal(t, [][]byte{{0x44}, {0x88}, {0xbb}}, env.chip.Sent)
}

func TestAllocateInvalidCandidates(t *testing.T) {
	testCases := []struct {
		name string
		list []uint8
	}{
		{"nil", nil},
		{"empty", []uint8{0xFF}},
		{"unterminated", []uint8{3}},
		{"out of range", []uint8{0x10, 0xFF}},
		{"seventeen", append(make([]uint8, 17), 0xFF)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			reads, writes := env.chip.Reads, env.chip.Writes
			require.ErrorIs(t, env.ctl.AllocateLogicalAddr(tc.list), cec.ErrInvalidParam)
			require.Equal(t, reads, env.chip.Reads)
			require.Equal(t, writes, env.chip.Writes)
			require.Equal(t, cec.OperNone, env.ctl.Status().Operation)
		})
	}
}

func TestAllocateBusy(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.ctl.AllocateLogicalAddr(cec.Candidates(3)))
	require.Equal(t, cec.ErrBusy, env.ctl.AllocateLogicalAddr(cec.Candidates(4)))
	require.Equal(t, cec.ErrBusy, env.ctl.ScanLogicalAddrs())
	require.Equal(t, cec.ErrBusy, env.ctl.SendMessage(cec.NewMessage(4, 0, cec.OpStandby)))
	require.Equal(t, cec.ErrBusy, env.ctl.ResendLast())
}

func TestAllocateRetryExhausted(t *testing.T) {
	testCases := []struct {
		name    string
		script  []sim.Outcome
		retries uint8
		code    cec.ErrCode
	}{
		{"arbitration lost", []sim.Outcome{sim.ArbLost, sim.ArbLost, sim.ArbLost, sim.ArbLost}, 0, cec.CodeArbLost},
		{"short nack", nil, 2, cec.CodeTimeout},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.chip.Script(tc.script...)
			env.chip.NackRetries = tc.retries
			require.NoError(t, env.ctl.AllocateLogicalAddr(cec.Candidates(3, 4)))
			evs := env.settle()
			require.Equal(t, []cec.Event{cec.LogAddrAlloc{
				Status: cec.AllocFailed,
				Addr:   3,
				Code:   tc.code,
			}}, evs)
			require.Len(t, env.chip.Sent, cec.RetryCount+1)
			require.Zero(t, env.ctl.Status().Retries)
		})
	}
}

func TestAllocateRecoversFromArbLost(t *testing.T) {
	env := newTestEnv(t)
	env.chip.Script(sim.ArbLost, sim.ArbLost)
	require.NoError(t, env.ctl.AllocateLogicalAddr(cec.Candidates(3)))
	require.Equal(t, []cec.Event{cec.LogAddrAlloc{Status: cec.AllocOK, Addr: 3}}, env.settle())
	require.Len(t, env.chip.Sent, 3)
}

func TestAllocateDeferredBehindFrame(t *testing.T) {
	env := newTestEnv(t, cec.AddrTV)
	msg := cec.NewMessage(cec.AddrUnregistered, cec.AddrTV, cec.OpGivePhysicalAddress)
	require.NoError(t, env.ctl.SendMessage(msg))
	require.NoError(t, env.ctl.AllocateLogicalAddr(cec.Candidates(4)))
	require.Len(t, env.chip.Sent, 1)

	// frames submitted while the claim runs wait for it
	res, err := env.ctl.Submit(msg)
	require.NoError(t, err)
	require.Equal(t, cec.Queued, res)

	require.Equal(t, []cec.Event{cec.TxDone{}}, env.poll())
	require.Equal(t, []byte{0x44}, env.chip.LastSent())
	require.Equal(t, []cec.Event{cec.LogAddrAlloc{Status: cec.AllocOK, Addr: 4}}, env.poll())
	require.Equal(t, []byte(msg), env.chip.LastSent())
	require.Equal(t, []cec.Event{cec.TxDone{}}, env.settle())
}

func TestScanLogicalAddrs(t *testing.T) {
	env := newTestEnv(t, cec.AddrTV, cec.AddrAudioSystem, cec.AddrPlayback2)
	require.NoError(t, env.ctl.ScanLogicalAddrs())
	require.Equal(t, cec.OperGetLogAddrList, env.ctl.Status().Operation)
	evs := env.settle()
	require.Len(t, evs, 1)
	list, ok := evs[0].(cec.LogAddrList)
	require.True(t, ok)
	require.Equal(t, cec.CodeNone, list.Code)
	require.Equal(t, uint16(1<<0|1<<5|1<<8), list.Bitmap)
	require.True(t, list.InUse(cec.AddrAudioSystem))
	require.False(t, list.InUse(cec.AddrPlayback1))
	require.Len(t, env.chip.Sent, 16)
	for i, sent := range env.chip.Sent {
		require.Equal(t, []byte{byte(i<<4 | i)}, sent)
	}
}

func TestScanAbortsOnArbLost(t *testing.T) {
	env := newTestEnv(t, cec.AddrTV)
	env.chip.Script(sim.Ack, sim.ArbLost, sim.ArbLost, sim.ArbLost, sim.ArbLost)
	require.NoError(t, env.ctl.ScanLogicalAddrs())
	require.Equal(t, []cec.Event{cec.LogAddrList{Bitmap: 1, Code: cec.CodeArbLost}}, env.settle())
	require.Equal(t, cec.OperNone, env.ctl.Status().Operation)
}
