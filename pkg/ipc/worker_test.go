package ipc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/nble.go/pkg/netbuf"
)

func TestWorkerDispatchAndRelease(t *testing.T) {
	pool := netbuf.NewPool(3, 8, 0)
	queue := netbuf.NewQueue(3)

	var order []string
	seen := make(chan []byte, 3)
	w := NewWorker(queue, Handlers{
		HandleFrameFunc(func(ctx context.Context, buf *netbuf.Buffer) {
			order = append(order, "first")
		}),
		HandleFrameFunc(func(ctx context.Context, buf *netbuf.Buffer) {
			order = append(order, "second")
			seen <- append([]byte{}, buf.Bytes()...)
		}),
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	for _, b := range []byte{'A', 'B', 'C'} {
		buf, err := pool.Get(0)
		require.NoError(t, err)
		buf.Write([]byte{b})
		require.True(t, queue.Put(buf))
	}
	for _, b := range []byte{'A', 'B', 'C'} {
		select {
		case data := <-seen:
			require.Equal(t, []byte{b}, data)
		case <-time.After(time.Second):
			t.Fatal("frame not handled")
		}
	}
	cancel()
	require.Equal(t, context.Canceled, <-errCh)
	require.Equal(t, []string{"first", "second", "first", "second", "first", "second"}, order)
	require.Equal(t, 3, pool.Free())
}
