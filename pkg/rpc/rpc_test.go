package rpc

import (
	"context"
	"testing"

	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes/wrappers"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/nble.go/pkg/netbuf"
)

type loopLink struct {
	pool  *netbuf.Pool
	sent  [][]byte
	sizes []int
}

func (l *loopLink) Alloc(length int) (*netbuf.Buffer, error) {
	l.sizes = append(l.sizes, length)
	return l.pool.Get(4)
}

func (l *loopLink) Transmit(buf *netbuf.Buffer) error {
	l.sent = append(l.sent, append([]byte{}, buf.Bytes()...))
	buf.Release()
	return nil
}

func TestDecode(t *testing.T) {
	testCases := []struct {
		name    string
		payload []byte
		id      uint64
		body    []byte
		err     error
	}{
		{"small id", []byte{0x05, 1, 2}, 5, []byte{1, 2}, nil},
		{"multi-byte id", []byte{0xac, 0x02}, 300, []byte{}, nil},
		{"empty", nil, 0, nil, ErrMalformed},
		{"truncated varint", []byte{0x80}, 0, nil, ErrMalformed},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, body, err := Decode(tc.payload)
			require.Equal(t, tc.err, err)
			if err == nil {
				require.Equal(t, tc.id, id)
				require.Equal(t, tc.body, body)
			}
		})
	}
}

func TestClientDispatcherRoundTrip(t *testing.T) {
	link := &loopLink{pool: netbuf.NewPool(1, 64, 0)}
	client := NewClient(link)
	require.NoError(t, client.Call(300, []byte("raw")))
	require.NoError(t, client.CallMessage(7, &wrappers.StringValue{Value: "hello"}))
	require.Equal(t, 1, link.pool.Free())
	require.Equal(t, 5, link.sizes[0])

	var raw []byte
	var msg string
	d := NewDispatcher().
		Register(300, func(ctx context.Context, body []byte) error {
			raw = append([]byte{}, body...)
			return nil
		}).
		RegisterMessage(7, func() proto.Message { return &wrappers.StringValue{} },
			func(ctx context.Context, m proto.Message) error {
				msg = m.(*wrappers.StringValue).Value
				return nil
			})
	for _, p := range link.sent {
		require.NoError(t, d.Dispatch(context.Background(), p))
	}
	require.Equal(t, []byte("raw"), raw)
	require.Equal(t, "hello", msg)
}

func TestDispatcherUnknown(t *testing.T) {
	d := NewDispatcher()
	err := d.Dispatch(context.Background(), []byte{9})
	require.Equal(t, &UnknownFuncError{ID: 9}, err)

	var got uint64
	d.Unhandled = func(ctx context.Context, id uint64, body []byte) { got = id }
	require.NoError(t, d.Dispatch(context.Background(), []byte{9, 1}))
	require.Equal(t, uint64(9), got)
}

func TestClientTooBig(t *testing.T) {
	link := &loopLink{pool: netbuf.NewPool(1, 8, 0)}
	err := NewClient(link).Call(1, make([]byte, 8))
	require.Equal(t, netbuf.ErrNoTailroom, err)
	require.Equal(t, 1, link.pool.Free())
}
