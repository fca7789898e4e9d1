package ipc

import (
	"github.com/golang/glog"

	"github.com/robotalks/nble.go/pkg/netbuf"
)

// RecvState is the framing state of Receiver.
type RecvState int

// Receiver states.
const (
	StateAwaitingHeader    RecvState = iota // collecting header bytes
	StateAwaitingPayload                    // filling a buffer with payload
	StateDiscardingPayload                  // draining payload of a dropped frame
)

func (s RecvState) String() string {
	switch s {
	case StateAwaitingHeader:
		return "AwaitingHeader"
	case StateAwaitingPayload:
		return "AwaitingPayload"
	case StateDiscardingPayload:
		return "DiscardingPayload"
	}
	return "Unknown"
}

// Allocator provides buffers without blocking.
type Allocator interface {
	Get(reserve int) (*netbuf.Buffer, error)
}

// userDataSize is the UserData each receive buffer needs for RxHeader.
const userDataSize = 2

// discardChunk bounds a single FIFO read of a dropped payload.
const discardChunk = 32

// Receiver rebuilds frames from bytes in the UART FIFO.
//
// All methods except State and Stats run in interrupt context and must
// not be called concurrently. Frames which can't be stored, because the
// length exceeds the buffer size or no buffer is free, are drained from
// the FIFO and dropped.
type Receiver struct {
	fifo   FIFOReader
	pool   Allocator
	queue  *netbuf.Queue
	maxLen int
	stats  *counters

	state     RecvState
	hdr       [HeaderSize]byte
	hdrBytes  int
	header    Header
	remaining int
	buf       *netbuf.Buffer
	scratch   [discardChunk]byte
}

// NewReceiver creates a Receiver reading from fifo. Complete frames are
// stored in buffers from pool and put on queue. Frames longer than
// maxLen are never allocated.
func NewReceiver(fifo FIFOReader, pool Allocator, queue *netbuf.Queue, maxLen int) *Receiver {
	return &Receiver{
		fifo:   fifo,
		pool:   pool,
		queue:  queue,
		maxLen: maxLen,
		stats:  &counters{},
	}
}

// State returns the current framing state.
func (r *Receiver) State() RecvState {
	return r.state
}

// Stats returns receive counters.
func (r *Receiver) Stats() Stats {
	return r.stats.snapshot()
}

// OnReceiveReady implements IRQHandler. It consumes the FIFO until empty.
func (r *Receiver) OnReceiveReady() {
	for r.step() {
	}
}

// OnTransmitReady implements IRQHandler. Transmission is polled, so
// there is nothing to do.
func (r *Receiver) OnTransmitReady() {
	glog.V(4).Info("transmit ready")
}

// OnSpurious implements SpuriousHandler.
func (r *Receiver) OnSpurious() {
	r.stats.spurious.Add(1)
}

// step performs one FIFO read for the current state. It returns false
// when the FIFO is empty.
func (r *Receiver) step() bool {
	switch r.state {
	case StateAwaitingHeader:
		n := r.fifo.ReadFIFO(r.hdr[r.hdrBytes:])
		if n == 0 {
			return false
		}
		if r.hdrBytes += n; r.hdrBytes == HeaderSize {
			r.headerReady()
		}
	case StateAwaitingPayload:
		n := r.fifo.ReadFIFO(r.buf.Tail()[:r.remaining])
		if n == 0 {
			return false
		}
		r.buf.Add(n)
		if r.remaining -= n; r.remaining == 0 {
			r.frameReady()
		}
	case StateDiscardingPayload:
		chunk := r.scratch[:]
		if r.remaining < len(chunk) {
			chunk = chunk[:r.remaining]
		}
		n := r.fifo.ReadFIFO(chunk)
		if n == 0 {
			return false
		}
		if r.remaining -= n; r.remaining == 0 {
			r.reset()
		}
	}
	return true
}

func (r *Receiver) headerReady() {
	r.header = DecodeHeader(r.hdr[:])
	r.remaining = int(r.header.Len)
	if r.remaining > r.maxLen {
		glog.Errorf("Too much data to fit buffer: %d > %d", r.remaining, r.maxLen)
		r.stats.rxOversized.Add(1)
		r.discard()
		return
	}
	buf, err := r.pool.Get(0)
	if err != nil {
		glog.Errorf("No available IPC buffers: %v", err)
		r.stats.rxExhausted.Add(1)
		r.discard()
		return
	}
	if buf.Tailroom() < r.remaining {
		glog.Errorf("Too much data to fit buffer: %d > %d", r.remaining, buf.Tailroom())
		r.stats.rxOversized.Add(1)
		buf.Release()
		r.discard()
		return
	}
	if len(buf.UserData) >= userDataSize {
		buf.UserData[0], buf.UserData[1] = r.header.Channel, r.header.SourceID
	}
	r.buf, r.state = buf, StateAwaitingPayload
	if r.remaining == 0 {
		r.frameReady()
	}
}

func (r *Receiver) discard() {
	if r.remaining == 0 {
		r.reset()
		return
	}
	r.state = StateDiscardingPayload
}

func (r *Receiver) frameReady() {
	buf := r.buf
	r.reset()
	if !r.queue.Put(buf) {
		glog.Errorf("Dispatch queue full, dropping %d bytes", buf.Len())
		r.stats.rxQueueFull.Add(1)
		buf.Release()
		return
	}
	r.stats.rxFrames.Add(1)
	r.stats.rxBytes.Add(uint64(buf.Len()))
	glog.V(4).Infof("full packet received: %d bytes", buf.Len())
}

func (r *Receiver) reset() {
	r.state, r.hdrBytes, r.remaining, r.buf = StateAwaitingHeader, 0, 0, nil
}

// RxHeader returns the header a received buffer was framed with.
func RxHeader(buf *netbuf.Buffer) Header {
	h := Header{Len: uint16(buf.Len())}
	if len(buf.UserData) >= userDataSize {
		h.Channel, h.SourceID = buf.UserData[0], buf.UserData[1]
	}
	return h
}
