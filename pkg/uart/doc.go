// Package uart provides ipc.Device implementations on top of byte streams:
// serial devices and serial-over-websocket bridges.
package uart
