package cec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/cec.go/pkg/cec"
	"github.com/robotalks/cec.go/pkg/cec/reg"
	"github.com/robotalks/cec.go/pkg/cec/sim"
)

type testEnv struct {
	t      *testing.T
	chip   *sim.Chip
	ctl    *cec.Controller
	events cec.Events
}

func newTestEnv(t *testing.T, present ...uint8) *testEnv {
	env := &testEnv{t: t, chip: sim.New(present...)}
	env.ctl = cec.New(env.chip, &env.events)
	require.NoError(t, env.ctl.Reset())
	return env
}

// poll services one interrupt and returns the events raised.
func (e *testEnv) poll() []cec.Event {
	require.NoError(e.t, e.ctl.Poll())
	return e.events.Take()
}

// settle polls until the transmitter is idle.
func (e *testEnv) settle() []cec.Event {
	var evs []cec.Event
	for i := 0; i < 100 && e.ctl.Status().TxState == cec.TxBusy; i++ {
		evs = append(evs, e.poll()...)
	}
	require.Equal(e.t, cec.TxIdle, e.ctl.Status().TxState)
	return evs
}

func TestSendInvalidLengthWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	writes := env.chip.Writes
	err := env.ctl.SendMessage(make(cec.Message, 17))
	require.ErrorIs(t, err, cec.ErrInvalidParam)
	require.ErrorIs(t, env.ctl.SendMessage(nil), cec.ErrInvalidParam)
	_, err = env.ctl.Submit(make(cec.Message, 17))
	require.ErrorIs(t, err, cec.ErrInvalidLength)
	require.Equal(t, writes, env.chip.Writes)
	require.Empty(t, env.chip.Sent)
}

func TestSendLoadsFrame(t *testing.T) {
	env := newTestEnv(t, cec.AddrTV)
	msg := cec.NewMessage(cec.AddrPlayback1, cec.AddrTV, cec.OpImageViewOn)
	require.NoError(t, env.ctl.SendMessage(msg))
	require.Equal(t, []byte(msg), env.chip.LastSent())
	require.Equal(t, uint8(2), env.chip.PeekField(reg.TxLength))
	require.Equal(t, cec.TxBusy, env.ctl.Status().TxState)
	require.Equal(t, cec.ErrBusy, env.ctl.SendMessage(msg))
	require.Equal(t, []cec.Event{cec.TxDone{}}, env.poll())
	require.Equal(t, cec.TxIdle, env.ctl.Status().TxState)
}

func TestSubmitWhileBusyQueues(t *testing.T) {
	env := newTestEnv(t, cec.AddrTV)
	first := cec.NewMessage(cec.AddrPlayback1, cec.AddrTV, cec.OpImageViewOn)
	second := cec.NewMessage(cec.AddrPlayback1, cec.AddrBroadcast, cec.OpActiveSource, 0x10, 0x00)

	res, err := env.ctl.Submit(first)
	require.NoError(t, err)
	require.Equal(t, cec.Sent, res)

	res, err = env.ctl.Submit(second)
	require.NoError(t, err)
	require.Equal(t, cec.Queued, res)
	st := env.ctl.Status()
	require.Equal(t, cec.TxBusy, st.TxState)
	require.Equal(t, 1, st.Queued)
	require.Len(t, env.chip.Sent, 1)

	// completion of the first frame loads the second before returning
	require.Equal(t, []cec.Event{cec.TxDone{}}, env.poll())
	require.Equal(t, []byte(second), env.chip.LastSent())
	require.Equal(t, cec.TxBusy, env.ctl.Status().TxState)
	require.Zero(t, env.ctl.Status().Queued)
	require.Equal(t, []cec.Event{cec.TxDone{}}, env.poll())
	require.Equal(t, cec.TxIdle, env.ctl.Status().TxState)
}

func TestSubmitQueueFull(t *testing.T) {
	env := newTestEnv(t)
	big := make(cec.Message, cec.MaxMessageSize)
	big[0] = 0x40
	_, err := env.ctl.Submit(big)
	require.NoError(t, err)
	res, err := env.ctl.Submit(big)
	require.NoError(t, err)
	require.Equal(t, cec.Queued, res)
	_, err = env.ctl.Submit(big)
	require.Equal(t, cec.ErrQueueFull, err)
	require.Equal(t, 1, env.ctl.Status().Queued)
}

func TestTimeoutAfterNack(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.ctl.SendMessage(cec.NewMessage(4, 0, cec.OpGiveDevicePowerStatus)))
	require.Equal(t, []cec.Event{cec.TxTimeout{Code: cec.CodeTimeout}}, env.poll())
}

func TestRetryResetByTimeout(t *testing.T) {
	env := newTestEnv(t)
	env.chip.Script(sim.ArbLost, sim.ArbLost, sim.Nack)
	require.NoError(t, env.ctl.SendMessage(cec.NewMessage(4, 0, cec.OpStandby)))
	require.Empty(t, env.poll())
	require.Equal(t, 1, env.ctl.Status().Retries)
	require.Empty(t, env.poll())
	require.Equal(t, 2, env.ctl.Status().Retries)
	require.Equal(t, []cec.Event{cec.TxTimeout{Code: cec.CodeTimeout}}, env.poll())
	require.Zero(t, env.ctl.Status().Retries)
	require.Len(t, env.chip.Sent, 3)
}

func TestArbLostExhaustsOnce(t *testing.T) {
	env := newTestEnv(t, cec.AddrTV)
	env.chip.Script(sim.ArbLost, sim.ArbLost, sim.ArbLost, sim.ArbLost)
	msg := cec.NewMessage(4, 0, cec.OpStandby)
	require.NoError(t, env.ctl.SendMessage(msg))
	for i := 1; i <= cec.RetryCount; i++ {
		require.Empty(t, env.poll())
		require.Equal(t, i, env.ctl.Status().Retries)
		require.Equal(t, cec.TxBusy, env.ctl.Status().TxState)
		require.Len(t, env.chip.Sent, i+1)
	}
	require.Equal(t, []cec.Event{cec.TxArbLost{Code: cec.CodeArbLost}}, env.poll())
	require.Zero(t, env.ctl.Status().Retries)
	require.Equal(t, cec.TxIdle, env.ctl.Status().TxState)
	require.Empty(t, env.poll())
	for _, sent := range env.chip.Sent {
		require.Equal(t, []byte(msg), sent)
	}
}

func TestArbLostThenSuccess(t *testing.T) {
	env := newTestEnv(t, cec.AddrTV)
	env.chip.Script(sim.ArbLost)
	require.NoError(t, env.ctl.SendMessage(cec.NewMessage(4, 0, cec.OpStandby)))
	require.Equal(t, []cec.Event{cec.TxDone{}}, env.settle())
	require.Zero(t, env.ctl.Status().Retries)
}

func TestResendLast(t *testing.T) {
	env := newTestEnv(t, cec.AddrTV)
	require.Equal(t, cec.ErrNoFrame, env.ctl.ResendLast())
	msg := cec.NewMessage(4, 0, cec.OpImageViewOn)
	require.NoError(t, env.ctl.SendMessage(msg))
	require.Equal(t, cec.ErrBusy, env.ctl.ResendLast())
	env.settle()
	require.NoError(t, env.ctl.ResendLast())
	require.Equal(t, []cec.Event{cec.TxDone{}}, env.settle())
	require.Equal(t, [][]byte{msg, msg}, env.chip.Sent)
}

func TestSendQueuedMessage(t *testing.T) {
	env := newTestEnv(t)
	writes := env.chip.Writes
	require.NoError(t, env.ctl.SendQueuedMessage())
	require.Equal(t, writes, env.chip.Writes)
	require.NoError(t, env.ctl.SendMessage(cec.NewMessage(4, 0, cec.OpStandby)))
	require.Equal(t, cec.ErrBusy, env.ctl.SendQueuedMessage())
}

func TestResetClearsState(t *testing.T) {
	env := newTestEnv(t, cec.AddrTV)
	require.NoError(t, env.ctl.Enable(true))
	require.NoError(t, env.ctl.SetLogicalAddr(cec.AddrPlayback1, 0, true))
	msg := cec.NewMessage(4, 0, cec.OpStandby)
	_, err := env.ctl.Submit(msg)
	require.NoError(t, err)
	_, err = env.ctl.Submit(msg)
	require.NoError(t, err)

	require.NoError(t, env.ctl.Reset())
	require.Equal(t, cec.Status{}, env.ctl.Status())
	require.False(t, env.chip.Enabled())
	require.Equal(t, reg.IntAll, env.chip.Peek(reg.IntMask))
	require.Equal(t, cec.ErrNoFrame, env.ctl.ResendLast())
}

func TestClearQueue(t *testing.T) {
	env := newTestEnv(t, cec.AddrTV)
	msg := cec.NewMessage(4, 0, cec.OpStandby)
	for i := 0; i < 3; i++ {
		_, err := env.ctl.Submit(msg)
		require.NoError(t, err)
	}
	require.Equal(t, 2, env.ctl.Status().Queued)
	env.ctl.ClearQueue()
	require.Equal(t, []cec.Event{cec.TxDone{}}, env.settle())
	require.Len(t, env.chip.Sent, 1)
}

func TestSetLogicalAddr(t *testing.T) {
	testCases := []struct {
		name   string
		addr   uint8
		slot   int
		enable bool
		err    error
	}{
		{"slot 0", 4, 0, true, nil},
		{"slot 1 disabled", 8, 1, false, nil},
		{"address too big", 16, 0, true, cec.ErrInvalidParam},
		{"slot out of range", 4, 2, true, cec.ErrInvalidParam},
		{"negative slot", 4, -1, true, cec.ErrInvalidParam},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			err := env.ctl.SetLogicalAddr(tc.addr, tc.slot, tc.enable)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			addr, enabled := env.chip.LogicalAddr(tc.slot)
			require.Equal(t, tc.addr, addr)
			require.Equal(t, tc.enable, enabled)
			require.Equal(t, cec.LogicalAddr{Addr: tc.addr, Enabled: tc.enable}, env.ctl.LogicalAddrs()[tc.slot])
		})
	}
}

func TestEnable(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.ctl.Enable(true))
	require.True(t, env.chip.Enabled())
	require.True(t, env.ctl.Status().Enabled)
	require.NoError(t, env.ctl.Enable(false))
	require.False(t, env.chip.Enabled())
}

func TestSpuriousTxInterrupt(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.ctl.OnInterrupt(cec.IntTxDone))
	require.Empty(t, env.events.Take())
}
