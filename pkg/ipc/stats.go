package ipc

import "sync/atomic"

// Stats are link counters.
type Stats struct {
	RxFrames    uint64 `json:"rx_frames"`
	RxBytes     uint64 `json:"rx_bytes"`
	RxExhausted uint64 `json:"rx_exhausted"`
	RxOversized uint64 `json:"rx_oversized"`
	RxQueueFull uint64 `json:"rx_queue_full"`
	TxFrames    uint64 `json:"tx_frames"`
	TxBytes     uint64 `json:"tx_bytes"`
	TxErrors    uint64 `json:"tx_errors"`
	Spurious    uint64 `json:"spurious"`
}

// RxDropped returns the total of received frames dropped.
func (s Stats) RxDropped() uint64 {
	return s.RxExhausted + s.RxOversized + s.RxQueueFull
}

type counters struct {
	rxFrames    atomic.Uint64
	rxBytes     atomic.Uint64
	rxExhausted atomic.Uint64
	rxOversized atomic.Uint64
	rxQueueFull atomic.Uint64
	txFrames    atomic.Uint64
	txBytes     atomic.Uint64
	txErrors    atomic.Uint64
	spurious    atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		RxFrames:    c.rxFrames.Load(),
		RxBytes:     c.rxBytes.Load(),
		RxExhausted: c.rxExhausted.Load(),
		RxOversized: c.rxOversized.Load(),
		RxQueueFull: c.rxQueueFull.Load(),
		TxFrames:    c.txFrames.Load(),
		TxBytes:     c.txBytes.Load(),
		TxErrors:    c.txErrors.Load(),
		Spurious:    c.spurious.Load(),
	}
}
