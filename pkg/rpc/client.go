package rpc

import (
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/nble.go/pkg/netbuf"
)

// Link allocates and transmits frames, usually an *ipc.Driver.
type Link interface {
	Alloc(length int) (*netbuf.Buffer, error)
	Transmit(*netbuf.Buffer) error
}

// Client sends calls over a Link.
type Client struct {
	Link Link
}

// NewClient creates a Client.
func NewClient(link Link) *Client {
	return &Client{Link: link}
}

// Call sends a call with a raw body. It blocks until the frame is
// written.
func (c *Client) Call(id uint64, body []byte) error {
	buf, err := c.Link.Alloc(EncodedLen(id, len(body)))
	if err != nil {
		return err
	}
	if _, err = buf.Write(proto.EncodeVarint(id)); err == nil {
		_, err = buf.Write(body)
	}
	if err != nil {
		buf.Release()
		return err
	}
	return c.Link.Transmit(buf)
}

// CallMessage sends a call with a protobuf message body.
func (c *Client) CallMessage(id uint64, msg proto.Message) error {
	body, err := proto.Marshal(msg)
	if err != nil {
		return err
	}
	return c.Call(id, body)
}
