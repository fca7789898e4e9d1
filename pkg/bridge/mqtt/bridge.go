package mqtt

import (
	"context"

	"github.com/golang/glog"

	"github.com/robotalks/nble.go/pkg/netbuf"
)

// Default topics relative to the queue prefix.
const (
	DefaultRxTopic = "rx"
	DefaultTxTopic = "tx"
)

// Sender transmits a payload as one frame.
type Sender interface {
	Send(payload []byte) error
}

// Bridge forwards frames between the driver and the broker.
type Bridge struct {
	Queue   *Queue
	Link    Sender
	RxTopic string
	TxTopic string
}

// NewBridge creates a Bridge with default topics.
func NewBridge(q *Queue, link Sender) *Bridge {
	return &Bridge{Queue: q, Link: link, RxTopic: DefaultRxTopic, TxTopic: DefaultTxTopic}
}

// Name implements framework.Named.
func (b *Bridge) Name() string {
	return "mqtt-bridge"
}

// HandleFrame implements ipc.Handler. The publish is awaited so a slow
// broker holds the buffer and eventually stalls reception.
func (b *Bridge) HandleFrame(ctx context.Context, buf *netbuf.Buffer) {
	payload := append([]byte(nil), buf.Bytes()...)
	token := b.Queue.Pub(b.RxTopic, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		glog.Errorf("Publish %s error: %v", b.RxTopic, err)
	}
}

// Run implements framework.Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	if token := b.Queue.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer b.Queue.Close()
	sub := b.Queue.Sub(b.TxTopic, b.handleTx)
	defer sub.Close()
	if sub.Token.Wait() && sub.Token.Error() != nil {
		return sub.Token.Error()
	}
	<-ctx.Done()
	return ctx.Err()
}

func (b *Bridge) handleTx(topic string, payload []byte) {
	if err := b.Link.Send(payload); err != nil {
		glog.Errorf("Transmit %d bytes from %s error: %v", len(payload), topic, err)
	}
}
