package uart

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/nble.go/pkg/ipc"
	"github.com/robotalks/nble.go/pkg/netbuf"
)

type portTestEnv struct {
	t      *testing.T
	port   *Port
	peer   net.Conn
	driver *ipc.Driver
	frames chan []byte
	cancel func()
	done   chan error
}

func newPortTestEnv(t *testing.T) *portTestEnv {
	local, peer := net.Pipe()
	env := &portTestEnv{
		t:      t,
		port:   NewPort(local, 16),
		peer:   peer,
		frames: make(chan []byte, 8),
		done:   make(chan error, 2),
	}
	var err error
	env.driver, err = ipc.NewConfig().NewDriver(env.port, nil)
	require.NoError(t, err)
	env.driver.SetHandler(ipc.HandleFrameFunc(func(ctx context.Context, buf *netbuf.Buffer) {
		env.frames <- append([]byte{}, buf.Bytes()...)
	}))
	require.NoError(t, env.driver.Open())

	var ctx context.Context
	ctx, env.cancel = context.WithCancel(context.Background())
	go func() { env.done <- env.port.Run(ctx) }()
	go func() { env.done <- env.driver.Run(ctx) }()
	return env
}

func (e *portTestEnv) close() {
	e.cancel()
	e.port.Close()
	e.peer.Close()
}

func (e *portTestEnv) expectFrame(data []byte) {
	select {
	case f := <-e.frames:
		require.Equal(e.t, data, f)
	case <-time.After(time.Second):
		e.t.Fatal("frame not received")
	}
}

func TestPortReceive(t *testing.T) {
	env := newPortTestEnv(t)
	defer env.close()

	// larger than the FIFO, so the reader has to wait for the handler.
	payload := bytes.Repeat([]byte{0x5a}, 100)
	var stream bytes.Buffer
	_, err := ipc.WriteFrame(&stream, ipc.Header{}, payload)
	require.NoError(t, err)
	_, err = ipc.WriteFrame(&stream, ipc.Header{}, []byte{1, 2})
	require.NoError(t, err)
	_, err = env.peer.Write(stream.Bytes())
	require.NoError(t, err)

	env.expectFrame(payload)
	env.expectFrame([]byte{1, 2})
	require.Equal(t, uint64(0), env.port.Overruns())
}

func TestPortTransmit(t *testing.T) {
	env := newPortTestEnv(t)
	defer env.close()

	errCh := make(chan error, 1)
	go func() { errCh <- env.driver.Send([]byte("ping")) }()
	out := make([]byte, ipc.HeaderSize+4)
	_, err := io.ReadFull(env.peer, out)
	require.NoError(t, err)
	require.NoError(t, <-errCh)
	require.Equal(t, append([]byte{4, 0, 0, 0}, "ping"...), out)
}

func TestPortRunStopsOnStreamError(t *testing.T) {
	env := newPortTestEnv(t)
	env.peer.Close()
	select {
	case err := <-env.done:
		require.Equal(t, io.EOF, err)
	case <-time.After(time.Second):
		t.Fatal("Run not stopped")
	}
	env.close()
}

func TestPortOverrunWithInterruptsDisabled(t *testing.T) {
	local, peer := net.Pipe()
	port := NewPort(local, 4)
	defer port.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go port.Run(ctx)

	_, err := peer.Write([]byte{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return port.Overruns() == 2 }, time.Second, time.Millisecond)

	b := make([]byte, 8)
	require.True(t, port.RxReady())
	require.Equal(t, 4, port.ReadFIFO(b))
	require.Equal(t, []byte{1, 2, 3, 4}, b[:4])
	require.False(t, port.RxReady())
}

type fakeLines struct {
	calls []string
	err   error
}

func (l *fakeLines) SetDTR(v bool) error {
	l.calls = append(l.calls, map[bool]string{true: "dtr+", false: "dtr-"}[v])
	return l.err
}

func (l *fakeLines) SetRTS(v bool) error {
	l.calls = append(l.calls, map[bool]string{true: "rts+", false: "rts-"}[v])
	return l.err
}

func TestLineReset(t *testing.T) {
	lines := &fakeLines{}
	r := &LineReset{Lines: lines}
	require.NoError(t, r.Disable())
	require.NoError(t, r.Enable())
	require.Equal(t, []string{"dtr+", "rts-", "dtr-"}, lines.calls)

	lines = &fakeLines{err: io.ErrClosedPipe}
	r = &LineReset{Lines: lines}
	err := r.Disable()
	require.Error(t, err)
	require.Contains(t, err.Error(), "assert reset")
	require.Equal(t, []string{"dtr+"}, lines.calls)
}

func TestConfigOpenNoDevice(t *testing.T) {
	conf := NewConfig()
	conf.Device = ""
	_, _, err := conf.Open()
	require.Equal(t, ipc.ErrNoDevice, err)
	require.True(t, (&Config{Device: "wss://host/uart"}).IsWebSocket())
	require.False(t, (&Config{Device: "/dev/ttyS0"}).IsWebSocket())
}
