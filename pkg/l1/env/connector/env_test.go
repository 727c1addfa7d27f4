package connector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/cec.go/pkg/l1"
)

type staticConnector []l1.ControllerInfo

func (c staticConnector) Discover(context.Context) ([]l1.ControllerInfo, error) {
	return c, nil
}

func (c staticConnector) Connect(context.Context, l1.ControllerRef) (l1.ControllerConn, error) {
	return nil, nil
}

func TestDiscoverOne(t *testing.T) {
	tv := l1.ControllerInfo{Ref: l1.ControllerRef{Type: "cec", ID: "tv"}}
	box := l1.ControllerInfo{Ref: l1.ControllerRef{Type: "cec", ID: "box"}}
	other := l1.ControllerInfo{Ref: l1.ControllerRef{Type: "sensor", ID: "s1"}}

	ref, err := discoverOne(context.Background(), staticConnector{tv, other}, "cec")
	require.NoError(t, err)
	require.Equal(t, tv.Ref, ref)

	_, err = discoverOne(context.Background(), staticConnector{tv, box}, "cec")
	require.Error(t, err)
	_, err = discoverOne(context.Background(), staticConnector{other}, "cec")
	require.Error(t, err)
}

func TestNewConnectorScheme(t *testing.T) {
	testCases := []struct {
		url string
		ok  bool
	}{
		{"mqtt://localhost:1883/cec/", true},
		{"ws://localhost:8080/l1", true},
		{"tcp://localhost:8081", true},
		{"http://localhost", false},
	}
	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			_, err := (&Config{RegistryURL: tc.url}).NewConnector()
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}
