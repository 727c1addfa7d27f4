package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/cec.go/pkg/framework"
	"github.com/robotalks/cec.go/pkg/l1"
	"github.com/robotalks/cec.go/pkg/l1/comm"
	"github.com/robotalks/cec.go/pkg/l1/msgs"
)

func TestRegistrarServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	info := l1.ControllerInfo{
		Ref:  l1.ControllerRef{Type: "cec", ID: "test"},
		Meta: l1.ControllerMeta{Description: "test node"},
	}
	reg := NewRegistrar("127.0.0.1:0", info)
	node := fx.NewLoop().Add(reg, &comm.UnsupportedCommands{})
	go node.Run(ctx)

	waitCtx, done := context.WithTimeout(ctx, time.Second)
	defer done()
	addr, err := reg.ListenAddr(waitCtx)
	require.NoError(t, err)

	connector, err := NewConnector("ws://" + addr.String())
	require.NoError(t, err)
	infos, err := connector.Discover(waitCtx)
	require.NoError(t, err)
	require.Equal(t, []l1.ControllerInfo{info}, infos)

	_, err = connector.Connect(waitCtx, l1.ControllerRef{Type: "cec", ID: "other"})
	require.Error(t, err)

	conn, err := connector.Connect(waitCtx, info.Ref)
	require.NoError(t, err)
	defer conn.Close()
	client := fx.NewLoop()
	client.Add(conn.(fx.LoopAdder))
	go client.Run(ctx)

	_, err = l1.Wait(waitCtx, conn.DoCommand(&msgs.CecScan{}))
	require.Error(t, err)
	require.Equal(t, msgs.ErrUnsupportedCommand.Error(), err.Error())

	require.NoError(t, reg.SendEvent(ctx, &msgs.CecScanEvent{Bitmap: 0x11}))
	select {
	case ev := <-conn.Events():
		require.Equal(t, uint32(0x11), ev.(*msgs.CecScanEvent).Bitmap)
	case <-waitCtx.Done():
		t.Fatal("timeout waiting event")
	}
}
