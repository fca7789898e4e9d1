// Package ipc provides the UART IPC link between the host and the BLE
// coprocessor.
package ipc

// Every message on the wire is a frame: a 4-byte header followed by the
// payload.
//
//	offset 0: length    (uint16, little-endian, payload bytes)
//	offset 2: channel   (uint8)
//	offset 3: source_id (uint8)
//	offset 4: payload
//
// There is no checksum, delimiter or flow control. Frame boundaries come
// from the length field alone, so a corrupted length desynchronizes the
// stream until the link is reopened.
//
// Received bytes are reassembled by Receiver in interrupt context and
// queued to Worker, which hands each frame to a Handler. Outgoing
// payloads are built in buffers from Driver.Alloc and written by
// Driver.Transmit.
