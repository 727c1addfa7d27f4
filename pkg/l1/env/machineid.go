// Package env provides the environment shared by L1 nodes and clients.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
)

// AppID salts the machine ID so the node ID does not leak it.
const AppID = "cec.go"

// NodeID returns CEC_NODE_ID when set, otherwise an ID derived from the
// machine ID. It falls back to the host name when neither is available.
func NodeID() string {
	if id := os.Getenv("CEC_NODE_ID"); id != "" {
		return id
	}
	if id, err := machineid.ProtectedID(AppID); err == nil {
		return id[:16]
	}
	host, err := os.Hostname()
	if err != nil {
		panic(err)
	}
	return host
}
