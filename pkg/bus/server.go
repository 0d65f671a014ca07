package bus

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/gorilla/websocket"

	"github.com/modemd-project/modemd-go/pkg/auth"
	"github.com/modemd-project/modemd-go/pkg/log"
	"github.com/modemd-project/modemd-go/pkg/model"
	"github.com/modemd-project/modemd-go/pkg/wire"
)

// sendBufferSize is the per-client outbound message buffer size.
const sendBufferSize = 64

// upgrader configures the websocket upgrader.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// The bus listens on trusted interfaces only.
		return true
	},
}

// Server exposes one device's object surface over websockets.
type Server struct {
	device *model.Device
	gate   auth.Gate
	logger log.Logger

	mu         sync.Mutex
	clients    map[*serverClient]struct{}
	httpServer *http.Server
}

type serverClient struct {
	conn       *websocket.Conn
	send       chan []byte
	peer       string
	subscribed bool // guarded by the server mutex
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithGate sets the authorization gate for write operations.
func WithGate(g auth.Gate) ServerOption {
	return func(s *Server) { s.gate = g }
}

// WithLogger sets the event logger.
func WithLogger(l log.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a bus server for a device.
func NewServer(device *model.Device, opts ...ServerOption) *Server {
	s := &Server{
		device:  device,
		gate:    auth.AllowAll{},
		clients: make(map[*serverClient]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.OrNoop(s.logger)
	return s
}

// WatchObjects installs flush handlers on every object currently
// attached to the device so their changes reach subscribed clients.
// Call after all capability interfaces are initialized.
func (s *Server) WatchObjects() {
	for _, obj := range s.device.Objects() {
		name := obj.Name()
		obj.SetFlushHandler(func(changes map[uint16]any) {
			s.notifyFlush(name, changes)
		})
	}
}

// ListenAndServe starts serving on addr and blocks until the listener
// fails or Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts websocket connections on the listener.
func (s *Server) Serve(ln net.Listener) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/bus", s.handleWebSocket)

	srv := &http.Server{Handler: mux}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the listener and disconnects all clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	for client := range s.clients {
		close(client.send)
		client.conn.Close()
		delete(s.clients, client)
	}
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// handleWebSocket upgrades the HTTP connection and runs the session.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	peer := r.URL.Query().Get("peer")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		ev := log.NewEvent(log.CategoryBus, log.SeverityWarn, "websocket upgrade failed")
		ev.Error = err.Error()
		s.logger.Log(ev)
		return
	}

	client := &serverClient{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		peer: peer,
	}
	s.register(client)

	go s.writePump(client)
	s.readPump(client)
}

func (s *Server) register(client *serverClient) {
	s.mu.Lock()
	s.clients[client] = struct{}{}
	s.mu.Unlock()

	ev := log.NewEvent(log.CategoryBus, log.SeverityDebug, "bus client connected")
	ev.Peer = client.peer
	s.logger.Log(ev)
}

// unregister removes a client. Only the goroutine that removes the
// client from the map closes the send channel, preventing double-close
// on shutdown.
func (s *Server) unregister(client *serverClient) {
	s.mu.Lock()
	_, existed := s.clients[client]
	delete(s.clients, client)
	s.mu.Unlock()

	if existed {
		close(client.send)
	}
	client.conn.Close()

	ev := log.NewEvent(log.CategoryBus, log.SeverityDebug, "bus client disconnected")
	ev.Peer = client.peer
	s.logger.Log(ev)
}

func (s *Server) readPump(client *serverClient) {
	defer s.unregister(client)

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		req, err := wire.DecodeRequest(data)
		if err != nil {
			// Undecodable request: nothing to correlate a response to.
			ev := log.NewEvent(log.CategoryBus, log.SeverityWarn, "undecodable bus request")
			ev.Peer = client.peer
			ev.Error = err.Error()
			s.logger.Log(ev)
			continue
		}

		resp := s.dispatch(client, req)
		data, err = wire.EncodeFrame(&wire.Frame{Response: resp})
		if err != nil {
			continue
		}
		client.trySend(data)
	}
}

func (s *Server) writePump(client *serverClient) {
	for data := range client.send {
		if err := client.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			return
		}
	}
}

// trySend enqueues data, dropping it if the client's buffer is full.
func (c *serverClient) trySend(data []byte) {
	defer func() {
		// The send channel may close concurrently on unregister.
		_ = recover()
	}()
	select {
	case c.send <- data:
	default:
	}
}

// dispatch executes one request and builds the response.
func (s *Server) dispatch(client *serverClient, req *wire.Request) *wire.Response {
	resp := &wire.Response{ID: req.ID}

	fail := func(err error) *wire.Response {
		resp.Status = statusFor(err)
		resp.Error = err.Error()
		return resp
	}

	if err := req.Validate(); err != nil {
		return fail(err)
	}

	ctx := auth.ContextWithPeer(context.Background(), client.peer)

	switch req.Op {
	case wire.OpGet:
		obj, err := s.targetObject(req)
		if err != nil {
			return fail(err)
		}
		value, err := obj.ReadAttribute(req.Attr)
		if err != nil {
			return fail(err)
		}
		encoded, err := wire.Marshal(value)
		if err != nil {
			return fail(err)
		}
		resp.Value = encoded

	case wire.OpSet:
		obj, err := s.targetObject(req)
		if err != nil {
			return fail(err)
		}
		if err := s.gate.Authorize(ctx, client.peer, auth.AuthorizationDeviceControl); err != nil {
			return fail(err)
		}
		attr, err := obj.GetAttribute(req.Attr)
		if err != nil {
			return fail(err)
		}
		value, err := decodeValue(attr.Metadata().Type, req.Value)
		if err != nil {
			return fail(err)
		}
		if err := obj.WriteAttribute(req.Attr, value); err != nil {
			return fail(err)
		}
		obj.Flush()

	case wire.OpInvoke:
		obj, err := s.targetObject(req)
		if err != nil {
			return fail(err)
		}
		params, err := decodeParams(req.Params)
		if err != nil {
			return fail(err)
		}
		result, err := obj.InvokeMethod(ctx, req.Method, params)
		if err != nil {
			return fail(err)
		}
		if len(result) > 0 {
			encoded := make(map[string]cbor.RawMessage, len(result))
			for k, v := range result {
				data, err := wire.Marshal(v)
				if err != nil {
					return fail(err)
				}
				encoded[k] = data
			}
			resp.Result = encoded
		}

	case wire.OpSubscribe:
		s.mu.Lock()
		client.subscribed = true
		s.mu.Unlock()
	}

	resp.Status = wire.StatusSuccess
	return resp
}

// targetObject resolves the request's device and object.
func (s *Server) targetObject(req *wire.Request) (*model.Object, error) {
	if req.Device != s.device.ID() {
		return nil, &StatusError{Status: wire.StatusInvalidDevice, Message: "unknown device " + req.Device}
	}
	return s.device.Object(req.Object)
}

// notifyFlush broadcasts an object's flushed changes to subscribers.
func (s *Server) notifyFlush(object string, changes map[uint16]any) {
	encoded := make(map[uint16]cbor.RawMessage, len(changes))
	for id, value := range changes {
		data, err := wire.Marshal(value)
		if err != nil {
			continue
		}
		encoded[id] = data
	}

	frame, err := wire.EncodeFrame(&wire.Frame{Notification: &wire.Notification{
		Device:  s.device.ID(),
		Object:  object,
		Changes: encoded,
	}})
	if err != nil {
		return
	}

	s.mu.Lock()
	subscribers := make([]*serverClient, 0, len(s.clients))
	for client := range s.clients {
		if client.subscribed {
			subscribers = append(subscribers, client)
		}
	}
	s.mu.Unlock()

	for _, client := range subscribers {
		client.trySend(frame)
	}
}

// decodeValue decodes a Set value into the attribute's native type.
func decodeValue(t model.DataType, raw cbor.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, wire.ErrInvalidArgs
	}
	switch t {
	case model.DataTypeBool:
		var v bool
		err := wire.Unmarshal(raw, &v)
		return v, wrapDecodeErr(err)
	case model.DataTypeUint32:
		var v uint32
		err := wire.Unmarshal(raw, &v)
		return v, wrapDecodeErr(err)
	case model.DataTypeFloat64:
		var v float64
		err := wire.Unmarshal(raw, &v)
		return v, wrapDecodeErr(err)
	case model.DataTypeString:
		var v string
		err := wire.Unmarshal(raw, &v)
		return v, wrapDecodeErr(err)
	default:
		var v any
		err := wire.Unmarshal(raw, &v)
		return v, wrapDecodeErr(err)
	}
}

// decodeParams decodes Invoke parameters into plain Go values.
func decodeParams(raw map[string]cbor.RawMessage) (map[string]any, error) {
	params := make(map[string]any, len(raw))
	for k, data := range raw {
		var v any
		if err := wire.Unmarshal(data, &v); err != nil {
			return nil, wrapDecodeErr(err)
		}
		params[k] = v
	}
	return params, nil
}

func wrapDecodeErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", wire.ErrInvalidArgs, err)
}
