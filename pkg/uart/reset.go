package uart

import (
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// ModemLines controls the modem output lines of a serial port.
type ModemLines interface {
	SetDTR(bool) error
	SetRTS(bool) error
}

// LineReset implements ipc.Power for boards wiring the coprocessor reset
// to DTR and its wake input to RTS. An asserted line is driven low.
type LineReset struct {
	Lines ModemLines
	Hold  time.Duration
}

// Disable implements ipc.Power: reset is asserted, wake is driven high,
// then reset is held for Hold.
func (r *LineReset) Disable() error {
	if err := r.Lines.SetDTR(true); err != nil {
		glog.Errorf("Error asserting reset: %v", err)
		return errors.Wrap(err, "assert reset")
	}
	if err := r.Lines.SetRTS(false); err != nil {
		glog.Errorf("Error driving wake: %v", err)
		return errors.Wrap(err, "drive wake")
	}
	time.Sleep(r.Hold)
	return nil
}

// Enable implements ipc.Power by releasing reset.
func (r *LineReset) Enable() error {
	if err := r.Lines.SetDTR(false); err != nil {
		glog.Errorf("Error releasing reset: %v", err)
		return errors.Wrap(err, "release reset")
	}
	return nil
}
