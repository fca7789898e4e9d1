package uart

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/robotalks/nble.go/pkg/ipc"
)

// DefaultFIFOSize is the receive FIFO size used when none is given.
const DefaultFIFOSize = 256

// Port emulates an interrupt driven UART on top of a byte stream.
//
// Bytes read from the stream land in a bounded receive FIFO. Interrupts
// are delivered by Run on a single goroutine, so handler invocations never
// overlap. Writes go straight to the stream.
type Port struct {
	stream io.ReadWriteCloser
	size   int

	lock    sync.Mutex
	cond    *sync.Cond
	fifo    []byte
	handler ipc.IRQHandler
	closed  bool

	txLock sync.Mutex
	txByte [1]byte

	rxIRQ    atomic.Bool
	txIRQ    atomic.Bool
	irqCh    chan struct{}
	overruns atomic.Uint64
}

// NewPort wraps stream with a receive FIFO of fifoSize bytes.
func NewPort(stream io.ReadWriteCloser, fifoSize int) *Port {
	if fifoSize <= 0 {
		fifoSize = DefaultFIFOSize
	}
	p := &Port{
		stream: stream,
		size:   fifoSize,
		fifo:   make([]byte, 0, fifoSize),
		irqCh:  make(chan struct{}, 1),
	}
	p.cond = sync.NewCond(&p.lock)
	return p
}

// Name implements framework.Named.
func (p *Port) Name() string {
	return "uart"
}

// Overruns returns the number of bytes lost because the FIFO was full
// with receive interrupts disabled.
func (p *Port) Overruns() uint64 {
	return p.overruns.Load()
}

// ReadFIFO implements ipc.FIFOReader.
func (p *Port) ReadFIFO(b []byte) int {
	p.lock.Lock()
	n := copy(b, p.fifo)
	if n > 0 {
		p.fifo = append(p.fifo[:0], p.fifo[n:]...)
		p.cond.Broadcast()
	}
	p.lock.Unlock()
	return n
}

// RxReady implements ipc.Device.
func (p *Port) RxReady() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.fifo) > 0
}

// PollOut implements ipc.BytePoller.
func (p *Port) PollOut(b byte) error {
	p.txLock.Lock()
	defer p.txLock.Unlock()
	p.txByte[0] = b
	_, err := p.stream.Write(p.txByte[:])
	return err
}

// SetRxInterrupt implements ipc.Device.
func (p *Port) SetRxInterrupt(enabled bool) {
	p.rxIRQ.Store(enabled)
	if enabled {
		p.raise()
	}
}

// SetTxInterrupt implements ipc.Device.
func (p *Port) SetTxInterrupt(enabled bool) {
	p.txIRQ.Store(enabled)
	if enabled {
		p.raise()
	}
}

// SetInterruptHandler implements ipc.Device.
func (p *Port) SetInterruptHandler(h ipc.IRQHandler) {
	p.lock.Lock()
	p.handler = h
	p.lock.Unlock()
}

// Run implements framework.Runnable. It reads the stream and delivers
// interrupts until ctx is done or the stream fails.
func (p *Port) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go p.readLoop(errCh)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case <-p.irqCh:
			p.service()
		}
	}
}

// Close closes the stream and unblocks Run.
func (p *Port) Close() error {
	p.lock.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.lock.Unlock()
	return p.stream.Close()
}

func (p *Port) raise() {
	select {
	case p.irqCh <- struct{}{}:
	default:
	}
}

func (p *Port) readLoop(errCh chan<- error) {
	buf := make([]byte, p.size)
	for {
		n, err := p.stream.Read(buf)
		if n > 0 {
			p.push(buf[:n])
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}

// push appends data to the FIFO. With receive interrupts enabled it waits
// for the handler to make room; otherwise excess bytes are lost.
func (p *Port) push(data []byte) {
	p.lock.Lock()
	defer p.lock.Unlock()
	for len(data) > 0 {
		room := p.size - len(p.fifo)
		if room == 0 {
			if p.closed || !p.rxIRQ.Load() {
				p.overruns.Add(uint64(len(data)))
				glog.Warningf("rx fifo overrun, %d bytes lost", len(data))
				return
			}
			p.raise()
			p.cond.Wait()
			continue
		}
		if room > len(data) {
			room = len(data)
		}
		p.fifo = append(p.fifo, data[:room]...)
		data = data[room:]
		p.raise()
	}
}

// service runs the interrupt handler while a condition is pending.
func (p *Port) service() {
	p.lock.Lock()
	h := p.handler
	p.lock.Unlock()
	if h == nil {
		return
	}
	for first := true; ; first = false {
		var status ipc.IRQStatus
		if p.rxIRQ.Load() && p.RxReady() {
			status |= ipc.IRQRxReady
		}
		if p.txIRQ.Load() {
			// transmission is polled, the holding register is always empty
			// between frames.
			status |= ipc.IRQTxReady
		}
		if status == 0 && !first {
			return
		}
		ipc.Dispatch(h, status)
		if status&ipc.IRQRxReady == 0 {
			return
		}
	}
}
