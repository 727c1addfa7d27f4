package cec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTxCause(t *testing.T) {
	testCases := []struct {
		name  string
		flags IntFlags
		cause IntFlags
		event txEvent
	}{
		{"done", IntTxDone, IntTxDone, txReady},
		{"nack", IntTxNack, IntTxNack, txTimeout},
		{"arblost", IntArbLost, IntArbLost, txArbLost},
		{"done-nack", IntTxDone | IntTxNack, IntTxDone, txReady},
		{"nack-arblost", IntTxNack | IntArbLost | IntRxFrame, IntTxNack, txTimeout},
		{"all", intTxMask, IntTxDone, txReady},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.cause, txCause(tc.flags))
			require.Equal(t, tc.event, txEventOf(tc.flags))
		})
	}
}
