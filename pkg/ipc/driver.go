package ipc

import (
	"context"

	"github.com/golang/glog"

	"github.com/robotalks/nble.go/pkg/netbuf"
)

// Driver owns all state of one link: the bound device, buffer pools,
// dispatch queue and the receive, transmit and worker components.
type Driver struct {
	dev   Device
	power Power

	rxPool *netbuf.Pool
	txPool *netbuf.Pool
	queue  *netbuf.Queue

	receiver    *Receiver
	transmitter *Transmitter
	worker      *Worker

	stats counters
}

func newDriver(dev Device, power Power, c *Config) (*Driver, error) {
	if dev == nil {
		return nil, ErrNoDevice
	}
	if power == nil {
		power = NopPower{}
	}
	d := &Driver{
		dev:    dev,
		power:  power,
		rxPool: netbuf.NewPool(c.RxBufCount, c.BufSize, userDataSize),
		txPool: netbuf.NewPool(c.TxBufCount, c.BufSize, 0),
		// every receive buffer fits, so Put never fails.
		queue: netbuf.NewQueue(c.RxBufCount),
	}
	d.receiver = NewReceiver(dev, d.rxPool, d.queue, c.BufSize)
	d.receiver.stats = &d.stats
	d.transmitter = NewTransmitter(dev, d.txPool)
	d.transmitter.stats = &d.stats
	d.worker = NewWorker(d.queue, nil)
	return d, nil
}

// Open resets the coprocessor and starts receiving: the coprocessor is
// held in reset, stale bytes are drained from the FIFO, the receiver is
// installed as interrupt handler with receive interrupts enabled, and
// the coprocessor is released. Errors from Power are returned unchanged.
func (d *Driver) Open() error {
	glog.V(2).Info("open")
	if err := d.power.Disable(); err != nil {
		return err
	}
	d.dev.SetRxInterrupt(false)
	d.dev.SetTxInterrupt(false)
	if n := d.drain(); n > 0 {
		glog.V(2).Infof("drained %d stale bytes", n)
	}
	d.dev.SetInterruptHandler(d.receiver)
	d.dev.SetRxInterrupt(true)
	return d.power.Enable()
}

func (d *Driver) drain() (n int) {
	var b [1]byte
	for d.dev.RxReady() && d.dev.ReadFIFO(b[:]) > 0 {
		n++
	}
	return
}

// SetHandler sets the handler of received frames. It must be called
// before Run.
func (d *Driver) SetHandler(h Handler) {
	d.worker.Handler = h
}

// Name implements framework.Named.
func (d *Driver) Name() string {
	return d.worker.Name()
}

// Run implements framework.Runnable by running the worker loop.
func (d *Driver) Run(ctx context.Context) error {
	return d.worker.Run(ctx)
}

// Alloc gets a transmit buffer for length bytes of payload.
func (d *Driver) Alloc(length int) (*netbuf.Buffer, error) {
	return d.transmitter.Alloc(length)
}

// Transmit frames and writes buf, blocking until done. See
// Transmitter.Transmit.
func (d *Driver) Transmit(buf *netbuf.Buffer) error {
	return d.transmitter.Transmit(buf)
}

// Send copies payload into a transmit buffer and transmits it.
func (d *Driver) Send(payload []byte) error {
	buf, err := d.Alloc(len(payload))
	if err != nil {
		return err
	}
	if _, err = buf.Write(payload); err != nil {
		buf.Release()
		return err
	}
	return d.Transmit(buf)
}

// Stats returns link counters.
func (d *Driver) Stats() Stats {
	return d.stats.snapshot()
}

// RxPool returns the receive pool.
func (d *Driver) RxPool() *netbuf.Pool {
	return d.rxPool
}

// TxPool returns the transmit pool.
func (d *Driver) TxPool() *netbuf.Pool {
	return d.txPool
}

// Receiver returns the interrupt handler.
func (d *Driver) Receiver() *Receiver {
	return d.receiver
}
