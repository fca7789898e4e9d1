package ipc

import (
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/nble.go/pkg/netbuf"
)

// Transmitter frames payloads and writes them to the UART by polling.
type Transmitter struct {
	out   BytePoller
	pool  *netbuf.Pool
	stats *counters
	lock  sync.Mutex
}

// NewTransmitter creates a Transmitter writing to out with buffers taken
// from pool.
func NewTransmitter(out BytePoller, pool *netbuf.Pool) *Transmitter {
	return &Transmitter{out: out, pool: pool, stats: &counters{}}
}

// Stats returns transmit counters.
func (t *Transmitter) Stats() Stats {
	return t.stats.snapshot()
}

// Alloc gets a buffer able to hold length bytes of payload with room
// for the header in front. It fails immediately if no buffer is free.
func (t *Transmitter) Alloc(length int) (*netbuf.Buffer, error) {
	glog.V(4).Infof("alloc length %d", length)
	buf, err := t.pool.Get(HeaderSize)
	if err != nil {
		glog.Errorf("Unable to get tx buffer: %v", err)
		return nil, err
	}
	if length > buf.Tailroom() {
		glog.Errorf("Too big tx buffer requested: %d > %d", length, buf.Tailroom())
		buf.Release()
		return nil, ErrTooBig
	}
	return buf, nil
}

// Transmit prepends the header to the payload in buf and writes the
// frame byte by byte. It blocks until the last byte is accepted by the
// UART, then releases buf. buf must have been reserved HeaderSize bytes
// of headroom, which Alloc does. Concurrent calls are serialized, so
// frames never interleave. It must not be called in interrupt context.
//
// buf is released even if writing fails.
func (t *Transmitter) Transmit(buf *netbuf.Buffer) error {
	defer buf.Release()
	if buf.Len() > MaxPayloadLen {
		t.stats.txErrors.Add(1)
		return ErrFrameTooLarge
	}
	glog.V(4).Infof("transmit length %d", buf.Len())
	Header{Len: uint16(buf.Len())}.Encode(buf.Push(HeaderSize))

	t.lock.Lock()
	defer t.lock.Unlock()
	size := buf.Len()
	for buf.Len() > 0 {
		if err := t.out.PollOut(buf.PullU8()); err != nil {
			t.stats.txErrors.Add(1)
			return err
		}
	}
	t.stats.txFrames.Add(1)
	t.stats.txBytes.Add(uint64(size))
	return nil
}
