// Package msgs defines the L1 wire protocol between a CEC node and its
// clients: a typed envelope and the protobuf schemas of all messages.
//
// Producer: cecd
// Consumer: cecctl, cecmon and other L2 components
package msgs
