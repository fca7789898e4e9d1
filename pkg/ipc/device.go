package ipc

import "github.com/golang/glog"

// FIFOReader drains the UART receive FIFO.
type FIFOReader interface {
	// ReadFIFO copies bytes already received into p without blocking and
	// returns the count, 0 if the FIFO is empty.
	ReadFIFO(p []byte) int
}

// BytePoller writes single bytes to the UART.
type BytePoller interface {
	// PollOut blocks until the hardware accepts b.
	PollOut(b byte) error
}

// Device is the UART the coprocessor is attached to.
type Device interface {
	FIFOReader
	BytePoller
	// RxReady reports whether the receive FIFO holds data.
	RxReady() bool
	SetRxInterrupt(enabled bool)
	SetTxInterrupt(enabled bool)
	// SetInterruptHandler installs the handler invoked in interrupt
	// context. Invocations never overlap.
	SetInterruptHandler(IRQHandler)
}

// IRQHandler services UART interrupts.
type IRQHandler interface {
	OnReceiveReady()
	OnTransmitReady()
}

// SpuriousHandler is optionally implemented by an IRQHandler to be told
// about interrupts with no pending condition.
type SpuriousHandler interface {
	OnSpurious()
}

// IRQStatus is the pending interrupt condition.
type IRQStatus int

// Pending conditions.
const (
	IRQRxReady IRQStatus = 1 << iota
	IRQTxReady
)

// Dispatch invokes h for the condition in status. Receive takes
// precedence over transmit.
func Dispatch(h IRQHandler, status IRQStatus) {
	switch {
	case status&IRQRxReady != 0:
		h.OnReceiveReady()
	case status&IRQTxReady != 0:
		h.OnTransmitReady()
	default:
		glog.V(4).Info("spurious interrupt")
		if sh, ok := h.(SpuriousHandler); ok {
			sh.OnSpurious()
		}
	}
}

// Power resets and wakes the coprocessor.
type Power interface {
	// Disable holds the coprocessor in reset.
	Disable() error
	// Enable releases the coprocessor from reset.
	Enable() error
}

// NopPower is used when the board has no reset control.
type NopPower struct{}

// Disable implements Power.
func (NopPower) Disable() error { return nil }

// Enable implements Power.
func (NopPower) Enable() error { return nil }
