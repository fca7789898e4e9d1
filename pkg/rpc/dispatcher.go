package rpc

import (
	"context"
	"sync"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/nble.go/pkg/netbuf"
)

// Func handles the body of a call. body is only valid during the call.
type Func func(ctx context.Context, body []byte) error

// Dispatcher decodes received frames and calls registered functions.
// It implements ipc.Handler.
type Dispatcher struct {
	// Unhandled is called for functions not registered. Calls are dropped
	// with an error log if nil.
	Unhandled func(ctx context.Context, id uint64, body []byte)

	funcs map[uint64]Func
	lock  sync.RWMutex
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{funcs: make(map[uint64]Func)}
}

// Register binds fn to a function ID, replacing any previous one.
func (d *Dispatcher) Register(id uint64, fn Func) *Dispatcher {
	d.lock.Lock()
	d.funcs[id] = fn
	d.lock.Unlock()
	return d
}

// RegisterMessage binds a function whose body is a protobuf message.
// newMsg creates the message to decode into.
func (d *Dispatcher) RegisterMessage(id uint64, newMsg func() proto.Message, fn func(context.Context, proto.Message) error) *Dispatcher {
	return d.Register(id, func(ctx context.Context, body []byte) error {
		msg := newMsg()
		if err := proto.Unmarshal(body, msg); err != nil {
			return err
		}
		return fn(ctx, msg)
	})
}

// Dispatch calls the function encoded in payload.
func (d *Dispatcher) Dispatch(ctx context.Context, payload []byte) error {
	id, body, err := Decode(payload)
	if err != nil {
		return err
	}
	d.lock.RLock()
	fn := d.funcs[id]
	d.lock.RUnlock()
	if fn != nil {
		return fn(ctx, body)
	}
	if h := d.Unhandled; h != nil {
		h(ctx, id, body)
		return nil
	}
	return &UnknownFuncError{ID: id}
}

// HandleFrame implements ipc.Handler.
func (d *Dispatcher) HandleFrame(ctx context.Context, buf *netbuf.Buffer) {
	if err := d.Dispatch(ctx, buf.Bytes()); err != nil {
		glog.Errorf("rpc dispatch error: %v", err)
	}
}
