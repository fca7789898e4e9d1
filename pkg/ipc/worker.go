package ipc

import (
	"context"

	"github.com/golang/glog"

	"github.com/robotalks/nble.go/pkg/netbuf"
)

// Handler is called with every received frame. The buffer is released
// when HandleFrame returns, so it must not be retained.
type Handler interface {
	HandleFrame(context.Context, *netbuf.Buffer)
}

// HandleFrameFunc is func type of Handler.
type HandleFrameFunc func(context.Context, *netbuf.Buffer)

// HandleFrame implements Handler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, buf *netbuf.Buffer) {
	f(ctx, buf)
}

// Handlers passes a frame to each handler in order.
type Handlers []Handler

// HandleFrame implements Handler.
func (hs Handlers) HandleFrame(ctx context.Context, buf *netbuf.Buffer) {
	for _, h := range hs {
		h.HandleFrame(ctx, buf)
	}
}

// Worker consumes received frames.
type Worker struct {
	Handler Handler

	queue *netbuf.Queue
}

// NewWorker creates a Worker consuming queue.
func NewWorker(queue *netbuf.Queue, handler Handler) *Worker {
	return &Worker{Handler: handler, queue: queue}
}

// Name implements framework.Named.
func (w *Worker) Name() string {
	return "ipc-worker"
}

// Run implements framework.Runnable. It is the only consumer of the
// queue and returns only when ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	glog.V(2).Info("worker started")
	for {
		buf, err := w.queue.Get(ctx)
		if err != nil {
			return err
		}
		glog.V(4).Infof("got buf %d bytes", buf.Len())
		if h := w.Handler; h != nil {
			h.HandleFrame(ctx, buf)
		}
		buf.Release()
	}
}
