package shell

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// StreamPath is the path the event stream is served on.
const StreamPath = "/events"

// Stream message types.
const (
	StreamTypeSubscribe   = "subscribe"
	StreamTypeUnsubscribe = "unsubscribe"
	StreamTypePing        = "ping"
	StreamTypePong        = "pong"
	StreamTypeEvent       = "event"
	StreamTypeResponse    = "response"
	StreamTypeError       = "error"
)

// Stream connection limits.
const (
	streamSendBufferSize = 64
	streamMaxMessageSize = 4096
	streamPingInterval   = 30 * time.Second
	streamPongWait       = 60 * time.Second
)

// StreamMessage is a frame sent to or from a stream client.
type StreamMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// streamSubscribePayload is the payload for subscribe and unsubscribe frames.
type streamSubscribePayload struct {
	Kinds []EventKind `json:"kinds"`
}

// Stream pushes lifecycle events to WebSocket clients. The webview's asset
// server cannot upgrade connections, so the stream listens on its own
// loopback port; the page learns the URL from /__shell/status.
// A client with no subscriptions receives every kind.
type Stream struct {
	logger  Logger
	clients map[*streamClient]struct{}
	closed  bool
	server  *http.Server
	url     string
	mu      sync.RWMutex
}

type streamClient struct {
	stream *Stream
	conn   *websocket.Conn
	send   chan []byte
	kinds  map[EventKind]struct{}
	mu     sync.RWMutex
}

// The page is served from the custom scheme, so its Origin never matches
// the request host.
var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

func newStream(logger Logger) *Stream {
	return &Stream{
		logger:  logger,
		clients: make(map[*streamClient]struct{}),
	}
}

// Listen serves the stream on addr, which must be a loopback host:port
// (port 0 picks a free one). It returns the ws:// URL clients dial. The
// listener stops on Close or when ctx is done.
func (s *Stream) Listen(ctx context.Context, addr string) (string, error) {
	if err := checkLoopback(addr); err != nil {
		return "", err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listening for event stream: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(StreamPath, s)
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	url := "ws://" + ln.Addr().String() + StreamPath

	s.mu.Lock()
	if s.closed || s.server != nil {
		s.mu.Unlock()
		ln.Close() //nolint:errcheck // Never served
		return "", fmt.Errorf("listening for event stream: %w", http.ErrServerClosed)
	}
	s.server = srv
	s.url = url
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("event stream server failed", "error", err)
		}
	}()
	context.AfterFunc(ctx, s.Close)

	s.logger.Info("event stream listening", "url", url)
	return url, nil
}

// URL returns the ws:// URL of the running listener, or "".
func (s *Stream) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.url
}

func checkLoopback(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrStreamAddr, addr, err)
	}
	if host == "localhost" {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrStreamAddr, addr)
}

// broadcast sends ev to subscribed clients. Slow clients drop frames.
func (s *Stream) broadcast(ev Event) {
	msg := StreamMessage{
		Type:      StreamTypeEvent,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   ev,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to marshal stream event", "error", err)
		return
	}

	s.mu.RLock()
	clients := make([]*streamClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if c.wants(ev.Kind) {
			c.trySend(data)
		}
	}
}

// ClientCount returns the number of connected clients.
func (s *Stream) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Stream) register(c *streamClient) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.clients[c] = struct{}{}
	return true
}

// unregister removes c. Only the caller that removes it closes its send
// channel.
func (s *Stream) unregister(c *streamClient) {
	s.mu.Lock()
	_, existed := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()

	if existed {
		close(c.send)
	}
}

// Close disconnects every client, stops the listener and refuses new
// clients. It is safe to call more than once.
func (s *Stream) Close() {
	s.mu.Lock()
	s.closed = true
	for c := range s.clients {
		close(c.send)
		delete(s.clients, c)
	}
	srv := s.server
	s.server = nil
	s.url = ""
	s.mu.Unlock()

	if srv != nil {
		// Hijacked WebSocket connections are closed by their pumps.
		srv.Close() //nolint:errcheck // Listener close errors are not actionable
	}
}

// ServeHTTP upgrades the request and starts the client pumps.
func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("event stream upgrade failed", "error", err)
		return
	}

	c := &streamClient{
		stream: s,
		conn:   conn,
		send:   make(chan []byte, streamSendBufferSize),
		kinds:  make(map[EventKind]struct{}),
	}
	if !s.register(c) {
		//nolint:errcheck // Best-effort close frame
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}
	s.logger.Debug("event stream client connected", "clients", s.ClientCount())

	go c.writePump()
	go c.readPump()
}

func (c *streamClient) readPump() {
	defer func() {
		c.stream.unregister(c)
		c.conn.Close()
		c.stream.logger.Debug("event stream client disconnected", "clients", c.stream.ClientCount())
	}()

	c.conn.SetReadLimit(streamMaxMessageSize)
	//nolint:errcheck // Best-effort deadline on connection setup
	c.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.stream.logger.Warn("event stream read error", "error", err)
			}
			return
		}
		//nolint:errcheck // Best-effort deadline reset
		c.conn.SetReadDeadline(time.Now().Add(streamPongWait))
		c.handleMessage(data)
	}
}

func (c *streamClient) writePump() {
	ticker := time.NewTicker(streamPingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			//nolint:errcheck // Best-effort deadline; write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(streamPongWait))
			if !ok {
				//nolint:errcheck // Best-effort close frame
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(streamPongWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *streamClient) handleMessage(data []byte) {
	var msg struct {
		Type    string                 `json:"type"`
		ID      string                 `json:"id"`
		Payload streamSubscribePayload `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("", "invalid JSON message")
		return
	}

	switch msg.Type {
	case StreamTypeSubscribe:
		c.mu.Lock()
		for _, k := range msg.Payload.Kinds {
			c.kinds[k] = struct{}{}
		}
		c.mu.Unlock()
		c.sendResponse(msg.ID, StreamTypeResponse, map[string]any{"subscribed": msg.Payload.Kinds})
	case StreamTypeUnsubscribe:
		c.mu.Lock()
		for _, k := range msg.Payload.Kinds {
			delete(c.kinds, k)
		}
		c.mu.Unlock()
		c.sendResponse(msg.ID, StreamTypeResponse, map[string]any{"unsubscribed": msg.Payload.Kinds})
	case StreamTypePing:
		c.sendResponse(msg.ID, StreamTypePong, nil)
	default:
		c.sendError(msg.ID, "unknown message type: "+msg.Type)
	}
}

func (c *streamClient) wants(kind EventKind) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.kinds) == 0 {
		return true
	}
	_, ok := c.kinds[kind]
	return ok
}

// trySend queues data without blocking. It absorbs the panic from sending
// on a channel closed by a concurrent unregister.
func (c *streamClient) trySend(data []byte) {
	defer func() {
		recover() //nolint:errcheck // Absorb send-on-closed-channel panic
	}()

	select {
	case c.send <- data:
	default:
	}
}

func (c *streamClient) sendResponse(id, msgType string, payload any) {
	data, err := json.Marshal(StreamMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		return
	}
	c.trySend(data)
}

func (c *streamClient) sendError(id, message string) {
	c.sendResponse(id, StreamTypeError, map[string]string{"message": message})
}
