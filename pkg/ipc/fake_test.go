package ipc

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/nble.go/pkg/netbuf"
)

// fakeUART is a Device with an in-memory FIFO. Interrupts are raised by
// the test calling irq, which is equivalent to a single interrupt
// context.
type fakeUART struct {
	rx      []byte
	maxRead int // bytes returned by a single ReadFIFO, 0 for unlimited
	reads   int

	tx       bytes.Buffer
	txErr    error
	txLimit  int // PollOut fails with txErr after txLimit bytes
	loopback bool

	rxIRQ   bool
	txIRQ   bool
	handler IRQHandler
	calls   []string
}

func (u *fakeUART) ReadFIFO(p []byte) int {
	n := len(p)
	if n > len(u.rx) {
		n = len(u.rx)
	}
	if u.maxRead > 0 && n > u.maxRead {
		n = u.maxRead
	}
	copy(p, u.rx[:n])
	u.rx = u.rx[n:]
	u.reads++
	return n
}

func (u *fakeUART) PollOut(b byte) error {
	if u.txErr != nil && u.tx.Len() >= u.txLimit {
		return u.txErr
	}
	u.tx.WriteByte(b)
	if u.loopback {
		u.rx = append(u.rx, b)
	}
	return nil
}

func (u *fakeUART) RxReady() bool {
	return len(u.rx) > 0
}

func (u *fakeUART) SetRxInterrupt(enabled bool) {
	u.rxIRQ = enabled
	u.calls = append(u.calls, fmt.Sprintf("rx-irq:%v", enabled))
}

func (u *fakeUART) SetTxInterrupt(enabled bool) {
	u.txIRQ = enabled
	u.calls = append(u.calls, fmt.Sprintf("tx-irq:%v", enabled))
}

func (u *fakeUART) SetInterruptHandler(h IRQHandler) {
	u.handler = h
	u.calls = append(u.calls, "handler")
}

// feed appends bytes to the FIFO and raises a receive interrupt.
func (u *fakeUART) feed(p ...byte) {
	u.rx = append(u.rx, p...)
	u.irq()
}

func (u *fakeUART) irq() {
	if u.handler == nil || !u.rxIRQ {
		return
	}
	var status IRQStatus
	if len(u.rx) > 0 {
		status |= IRQRxReady
	}
	Dispatch(u.handler, status)
}

type fakePower struct {
	uart       *fakeUART
	disableErr error
	enableErr  error
}

func (p *fakePower) Disable() error {
	p.uart.calls = append(p.uart.calls, "disable")
	return p.disableErr
}

func (p *fakePower) Enable() error {
	p.uart.calls = append(p.uart.calls, "enable")
	return p.enableErr
}

var errFake = errors.New("fake")

// countingPool records every allocation attempt.
type countingPool struct {
	*netbuf.Pool
	gets int
}

func (p *countingPool) Get(reserve int) (*netbuf.Buffer, error) {
	p.gets++
	return p.Pool.Get(reserve)
}

func frameBytes(t *testing.T, h Header, payload []byte) []byte {
	var b bytes.Buffer
	_, err := WriteFrame(&b, h, payload)
	require.NoError(t, err)
	return b.Bytes()
}

func payloadOf(n int, seed byte) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = seed + byte(i)
	}
	return p
}
