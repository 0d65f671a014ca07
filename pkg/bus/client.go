package bus

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/modemd-project/modemd-go/pkg/wire"
)

// Client errors.
var (
	ErrClientClosed = errors.New("bus client closed")
)

// notificationBufferSize bounds the client-side notification queue.
// Notifications beyond the buffer are dropped, not blocked on.
const notificationBufferSize = 64

// Client is a websocket bus client.
type Client struct {
	conn *websocket.Conn

	writeMu sync.Mutex // serializes websocket writes

	mu      sync.Mutex
	pending map[string]chan *wire.Response
	closed  bool

	notifications chan *wire.Notification
	done          chan struct{}
}

// Dial connects to an agent's bus endpoint. The peer identity is sent
// as a query parameter and used for authorization checks.
func Dial(ctx context.Context, endpoint, peer string) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing bus endpoint: %w", err)
	}
	q := u.Query()
	q.Set("peer", peer)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dialing bus endpoint: %w", err)
	}

	c := &Client{
		conn:          conn,
		pending:       make(map[string]chan *wire.Response),
		notifications: make(chan *wire.Notification, notificationBufferSize),
		done:          make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Notifications returns the channel of attribute change notifications.
// Only delivers after Subscribe succeeds. Closed when the client closes.
func (c *Client) Notifications() <-chan *wire.Notification {
	return c.notifications
}

// Close tears down the connection. Outstanding requests fail with
// ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Client) readLoop() {
	defer func() {
		c.mu.Lock()
		c.closed = true
		for id, ch := range c.pending {
			close(ch)
			delete(c.pending, id)
		}
		c.mu.Unlock()
		close(c.notifications)
		close(c.done)
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		frame, err := wire.DecodeFrame(data)
		if err != nil {
			continue
		}

		switch {
		case frame.Response != nil:
			c.mu.Lock()
			ch := c.pending[frame.Response.ID]
			delete(c.pending, frame.Response.ID)
			c.mu.Unlock()
			if ch != nil {
				ch <- frame.Response
				close(ch)
			}

		case frame.Notification != nil:
			select {
			case c.notifications <- frame.Notification:
			default:
				// Slow consumer: drop rather than stall the read loop.
			}
		}
	}
}

// do sends a request and waits for its response.
func (c *Client) do(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	req.ID = uuid.NewString()

	ch := make(chan *wire.Response, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClientClosed
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()

	data, err := wire.EncodeRequest(req)
	if err != nil {
		c.abandon(req.ID)
		return nil, err
	}

	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.BinaryMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		c.abandon(req.ID)
		return nil, err
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, ErrClientClosed
		}
		if resp.Status != wire.StatusSuccess {
			return nil, &StatusError{Status: resp.Status, Message: resp.Error}
		}
		return resp, nil
	case <-ctx.Done():
		c.abandon(req.ID)
		return nil, ctx.Err()
	}
}

func (c *Client) abandon(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Get reads an attribute and returns its encoded value.
func (c *Client) Get(ctx context.Context, device, object string, attr uint16) (cbor.RawMessage, error) {
	resp, err := c.do(ctx, &wire.Request{
		Op:     wire.OpGet,
		Device: device,
		Object: object,
		Attr:   attr,
	})
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// GetInto reads an attribute and decodes it into out.
func (c *Client) GetInto(ctx context.Context, device, object string, attr uint16, out any) error {
	raw, err := c.Get(ctx, device, object, attr)
	if err != nil {
		return err
	}
	return wire.Unmarshal(raw, out)
}

// Set writes an attribute value.
func (c *Client) Set(ctx context.Context, device, object string, attr uint16, value any) error {
	encoded, err := wire.Marshal(value)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, &wire.Request{
		Op:     wire.OpSet,
		Device: device,
		Object: object,
		Attr:   attr,
		Value:  encoded,
	})
	return err
}

// Invoke calls a method with the given parameters.
func (c *Client) Invoke(ctx context.Context, device, object string, method uint8, params map[string]any) (map[string]cbor.RawMessage, error) {
	var encoded map[string]cbor.RawMessage
	if len(params) > 0 {
		encoded = make(map[string]cbor.RawMessage, len(params))
		for k, v := range params {
			data, err := wire.Marshal(v)
			if err != nil {
				return nil, err
			}
			encoded[k] = data
		}
	}

	resp, err := c.do(ctx, &wire.Request{
		Op:     wire.OpInvoke,
		Device: device,
		Object: object,
		Method: method,
		Params: encoded,
	})
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// Subscribe registers this connection for change notifications.
func (c *Client) Subscribe(ctx context.Context) error {
	_, err := c.do(ctx, &wire.Request{Op: wire.OpSubscribe})
	return err
}
