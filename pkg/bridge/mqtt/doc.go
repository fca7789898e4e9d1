// Package mqtt bridges IPC frames to an MQTT broker.
//
// Payloads of received frames are published to <prefix>rx and payloads
// published to <prefix>tx are transmitted to the coprocessor.
package mqtt
