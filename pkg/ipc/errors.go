package ipc

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDevice indicates no UART device is bound.
	ErrNoDevice = errors.New("no uart device")
	// ErrTooBig indicates the requested payload exceeds transmit buffer size.
	ErrTooBig = errors.New("too big tx buffer requested")
	// ErrFrameTooLarge indicates the payload can't be described by the header.
	ErrFrameTooLarge = errors.New("frame too large")
)

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field string
	Value int
}

// Error implements error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %d", e.Field, e.Value)
}
