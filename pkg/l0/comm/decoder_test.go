package comm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type decoderStep struct {
	in     []byte
	expect Step
	final  Step
}

type decoderScript struct {
	steps []decoderStep
}

func script() *decoderScript {
	return &decoderScript{}
}

func (s *decoderScript) on(state LinkState, in ...byte) *decoderScript {
	st := decoderStep{in: in, expect: Step{State: state}}
	st.final = st.expect
	s.steps = append(s.steps, st)
	return s
}

func (s *decoderScript) onSyncing(in ...byte) *decoderScript {
	return s.on(LinkSyncing|LinkReceiving, in...)
}

func (s *decoderScript) onReceiving(in ...byte) *decoderScript {
	return s.on(LinkReady|LinkReceiving, in...)
}

func (s *decoderScript) expire() *decoderScript {
	s.steps = append(s.steps, decoderStep{})
	return s
}

func (s *decoderScript) final(st Step) *decoderScript {
	s.steps[len(s.steps)-1].final = st
	return s
}

func (s *decoderScript) synced() *decoderScript {
	return s.final(Step{State: LinkReady})
}

func (s *decoderScript) syncedWithAck() *decoderScript {
	return s.final(Step{Sync: syncACK, State: LinkReady})
}

func (s *decoderScript) resync() *decoderScript {
	return s.final(Step{Sync: syncREQ, State: LinkSyncing})
}

func (s *decoderScript) frame(seq, code byte, data ...byte) *decoderScript {
	return s.final(Step{State: LinkReady, Frame: &Frame{Seq: Seq(seq), Code: code, Data: data}})
}

func TestDecoder(t *testing.T) {
	testCases := []struct {
		name  string
		steps *decoderScript
	}{
		{
			"sync and receive",
			script().
				onSyncing(syncACK, 1).synced().
				onReceiving(1, 0x02).frame(1, 2).
				onReceiving(2, 0x72, 0).frame(2, 2).
				onReceiving(3, 0x92, 0x03).frame(3, 0x82, 3).
				onReceiving(4, 0x72, 0x08, 1, 2, 3, 4, 5, 6, 7, 8).frame(4, 2, 1, 2, 3, 4, 5, 6, 7, 8),
		},
		{
			"expire while syncing",
			script().
				expire().resync().
				onSyncing(syncACK).
				expire().resync(),
		},
		{
			"expire while idle",
			script().
				onSyncing(syncACK, 1).synced().
				expire().synced(),
		},
		{
			"expire inside frame",
			script().
				onSyncing(syncACK, 1).synced().
				onReceiving(1, 0x22, 5).
				expire().resync(),
		},
		{
			"skip noise while syncing",
			script().
				on(LinkSyncing, 1, 2, 3, 0x80, 0xf0, 0xf1).
				onSyncing(syncACK, 1).synced(),
		},
		{
			"req while syncing",
			script().
				onSyncing(syncREQ, 1).syncedWithAck(),
		},
		{
			"req with invalid seq",
			script().
				onSyncing(syncREQ, syncREQ).resync().
				onSyncing(syncACK, 1).synced(),
		},
		{
			"req after sync",
			script().
				onSyncing(syncACK, 1).synced().
				onSyncing(syncREQ, 1).syncedWithAck().
				onReceiving(1, 0x02).frame(1, 2),
		},
		{
			"ack after sync",
			script().
				onSyncing(syncACK, 1).synced().
				onReceiving(syncACK, 1).synced().
				onReceiving(1, 0x02).frame(1, 2),
		},
		{
			"ack with wrong seq after sync",
			script().
				onSyncing(syncACK, 1).synced().
				onReceiving(syncACK, 2).resync().
				onSyncing(syncACK, 2).synced().
				onReceiving(2, 0x02).frame(2, 2),
		},
		{
			"out of sequence frame",
			script().
				onSyncing(syncACK, 1).synced().
				onReceiving(1, 2).frame(1, 2).
				onSyncing(1).resync().
				on(LinkSyncing, 0x92, 3).
				onSyncing(syncACK, 3).synced(),
		},
		{
			"oversized frame",
			script().
				onSyncing(syncACK, 1).synced().
				onReceiving(1, 0x70, 0x80).resync().
				onSyncing(syncACK, 1).synced(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var d Decoder
			for n, s := range tc.steps.steps {
				var st Step
				if len(s.in) == 0 {
					st = d.Expire()
				}
				for i, b := range s.in {
					st = d.Feed(b)
					if i+1 < len(s.in) {
						require.Equalf(t, s.expect, st, "step[%d] byte[%d]", n, i)
					}
				}
				require.Equalf(t, s.final, st, "step[%d] final", n)
			}
		})
	}
}

func TestDecoderResync(t *testing.T) {
	var d Decoder
	d.Feed(syncACK)
	d.Feed(1)
	d.Feed(1)
	require.Equal(t, LinkReady|LinkReceiving, d.State())
	st := d.Resync()
	require.Equal(t, Step{Sync: syncREQ, State: LinkSyncing}, st)
	require.Equal(t, TimerRestart, st.Timer())
}

func TestStepTimer(t *testing.T) {
	require.Equal(t, TimerRestart, Step{State: LinkReady | LinkReceiving}.Timer())
	require.Equal(t, TimerRestart, Step{State: LinkSyncing | LinkReceiving}.Timer())
	require.Equal(t, TimerStop, Step{State: LinkReady}.Timer())
	require.Equal(t, TimerKeep, Step{State: LinkSyncing}.Timer())
}
