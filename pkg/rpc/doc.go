// Package rpc carries function calls over the IPC link.
package rpc

// Each frame payload holds one call: the function ID encoded as a
// protobuf varint, followed by the body. Bodies are opaque bytes or
// protobuf encoded messages.
