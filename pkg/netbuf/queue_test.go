package netbuf

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	p := NewPool(3, 8, 0)
	q := NewQueue(3)
	require.Equal(t, 4, q.Cap())

	var in []*Buffer
	for i := 0; i < 3; i++ {
		buf, err := p.Get(0)
		require.NoError(t, err)
		buf.Write([]byte{byte('A' + i)})
		require.True(t, q.Put(buf))
		in = append(in, buf)
	}
	require.Equal(t, 3, q.Len())
	for _, expected := range in {
		buf, err := q.Get(context.Background())
		require.NoError(t, err)
		require.True(t, expected == buf)
	}
	require.Nil(t, q.TryGet())
	require.Equal(t, 0, q.Len())
}

func TestQueueFull(t *testing.T) {
	p := NewPool(3, 8, 0)
	q := NewQueue(2)
	for i := 0; i < 2; i++ {
		buf, _ := p.Get(0)
		require.True(t, q.Put(buf))
	}
	buf, _ := p.Get(0)
	require.False(t, q.Put(buf))
	require.NotNil(t, q.TryGet())
	require.True(t, q.Put(buf))
}

func TestQueueGetBlocksUntilPut(t *testing.T) {
	p := NewPool(1, 8, 0)
	q := NewQueue(1)
	buf, err := p.Get(0)
	require.NoError(t, err)

	got := make(chan *Buffer, 1)
	go func() {
		b, err := q.Get(context.Background())
		require.NoError(t, err)
		got <- b
	}()
	select {
	case <-got:
		t.Fatal("Get returned before Put")
	case <-time.After(20 * time.Millisecond):
	}
	require.True(t, q.Put(buf))
	select {
	case b := <-got:
		require.True(t, b == buf)
	case <-time.After(time.Second):
		t.Fatal("Get not woken by Put")
	}
}

func TestQueueGetCanceled(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := q.Get(ctx)
	require.Equal(t, context.Canceled, err)
}

func TestQueueOrderUnderConcurrency(t *testing.T) {
	const frames = 5000
	p := NewPool(8, 8, 0)
	q := NewQueue(8)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < frames; i++ {
			buf, err := q.Get(context.Background())
			require.NoError(t, err)
			require.Equal(t, []byte{byte(i), byte(i >> 8)}, buf.Bytes())
			buf.Release()
		}
	}()

	for i := 0; i < frames; {
		buf, err := p.Get(0)
		if err != nil {
			time.Sleep(time.Microsecond)
			continue
		}
		buf.Write([]byte{byte(i), byte(i >> 8)})
		require.True(t, q.Put(buf))
		i++
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer stalled")
	}
	require.Equal(t, 8, p.Free())
}
