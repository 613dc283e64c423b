package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/grovetools/sheetsync/errors"
	"github.com/grovetools/sheetsync/pkg/patch"
	"github.com/grovetools/sheetsync/version"
	"github.com/sirupsen/logrus"
)

// requestFrame is sent for every Invoke.
type requestFrame struct {
	ID      string          `json:"id"`
	Command string          `json:"command"`
	Args    json.RawMessage `json:"args"`
}

// incomingFrame is either a response (id set) or a push (patch set, no id).
type incomingFrame struct {
	ID     string          `json:"id,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	Patch  json.RawMessage `json:"patch,omitempty"`
}

type wsResult struct {
	frame incomingFrame
	err   error
}

// WebSocketClient implements Client over a single WebSocket connection.
// Responses are matched to requests by id and may arrive in any order.
type WebSocketClient struct {
	conn     *websocket.Conn
	endpoint string
	logger   *logrus.Entry

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]pendingCall
	err     error

	streamMu sync.Mutex
	stream   *wsStream

	done      chan struct{}
	closeOnce sync.Once
}

type wsStream struct {
	ch      chan patch.Patch
	ctxDone <-chan struct{}
}

type pendingCall struct {
	command string
	reply   chan wsResult
}

// DialWebSocket connects to the backend at url and starts the read pump.
func DialWebSocket(ctx context.Context, url string, dialTimeout time.Duration) (*WebSocketClient, error) {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	header := http.Header{"User-Agent": []string{version.UserAgent()}}
	conn, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, errors.BackendUnavailable(url, err)
	}

	c := &WebSocketClient{
		conn:     conn,
		endpoint: url,
		logger:   logrus.NewEntry(logrus.StandardLogger()),
		pending:  make(map[string]pendingCall),
		done:     make(chan struct{}),
	}
	go c.readPump()
	return c, nil
}

// WithLogger sets the logger used for connection diagnostics.
func (c *WebSocketClient) WithLogger(logger *logrus.Entry) *WebSocketClient {
	c.logger = logger
	return c
}

// Invoke sends a request frame and waits for the response with the same id.
func (c *WebSocketClient) Invoke(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	id := uuid.NewString()
	reply := make(chan wsResult, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return nil, errors.TransportFailed(name, err)
	}
	c.pending[id] = pendingCall{command: name, reply: reply}
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(requestFrame{ID: id, Command: name, Args: emptyArgs(args)})
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return nil, errors.TransportFailed(name, err).WithDetail("endpoint", c.endpoint)
	}

	select {
	case res := <-reply:
		if res.err != nil {
			return nil, errors.TransportFailed(name, res.err).WithDetail("endpoint", c.endpoint)
		}
		if res.frame.Error != "" {
			return nil, errors.BackendRejected(name, res.frame.Error)
		}
		if len(res.frame.Result) == 0 {
			return json.RawMessage("null"), nil
		}
		return res.frame.Result, nil
	case <-ctx.Done():
		c.forget(id)
		return nil, errors.TransportFailed(name, ctx.Err())
	}
}

func (c *WebSocketClient) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Stream returns pushed patches. Only one stream may be open per connection;
// pushes that arrive while no stream is open are dropped.
func (c *WebSocketClient) Stream(ctx context.Context) (<-chan patch.Patch, error) {
	c.mu.Lock()
	err := c.err
	c.mu.Unlock()
	if err != nil {
		return nil, errors.BackendUnavailable(c.endpoint, err)
	}

	c.streamMu.Lock()
	defer c.streamMu.Unlock()
	if c.stream != nil {
		return nil, fmt.Errorf("patch stream already open")
	}

	s := &wsStream{ch: make(chan patch.Patch, 16), ctxDone: ctx.Done()}
	c.stream = s

	go func() {
		select {
		case <-ctx.Done():
		case <-c.done:
		}
		c.streamMu.Lock()
		if c.stream == s {
			c.stream = nil
		}
		close(s.ch)
		c.streamMu.Unlock()
	}()

	return s.ch, nil
}

func (c *WebSocketClient) readPump() {
	var readErr error
	for {
		var frame incomingFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			readErr = err
			break
		}

		if frame.ID != "" {
			c.mu.Lock()
			call, ok := c.pending[frame.ID]
			delete(c.pending, frame.ID)
			c.mu.Unlock()
			if !ok {
				c.logger.WithField("id", frame.ID).Debug("Response for unknown request")
				continue
			}
			call.reply <- wsResult{frame: frame}
			continue
		}

		if len(frame.Patch) == 0 {
			continue
		}
		p, err := patch.Decode(frame.Patch)
		if err != nil {
			c.logger.WithError(err).WithField("code", errors.GetCode(err)).Error("Dropping malformed pushed patch")
			continue
		}
		c.deliver(p)
	}

	c.fail(readErr)
}

// deliver hands a push to the open stream, blocking so pushes stay ordered.
func (c *WebSocketClient) deliver(p patch.Patch) {
	c.streamMu.Lock()
	defer c.streamMu.Unlock()

	s := c.stream
	if s == nil {
		c.logger.Debug("Dropping pushed patch with no open stream")
		return
	}
	select {
	case s.ch <- p:
	case <-s.ctxDone:
	case <-c.done:
	}
}

// fail wakes every waiting call. The stream closes once done is closed.
func (c *WebSocketClient) fail(err error) {
	c.mu.Lock()
	if c.err == nil {
		if err == nil {
			err = fmt.Errorf("connection closed")
		}
		c.err = err
	}
	err = c.err
	pending := c.pending
	c.pending = make(map[string]pendingCall)
	c.mu.Unlock()

	for id, call := range pending {
		c.logger.WithFields(logrus.Fields{"id": id, "command": call.command}).Debug("Failing call on closed connection")
		call.reply <- wsResult{err: err}
	}
	c.closeOnce.Do(func() { close(c.done) })
}

// IsRunning reports whether the connection is still open.
func (c *WebSocketClient) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err == nil
}

// Close sends a close frame and tears down the connection.
func (c *WebSocketClient) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	err := c.conn.Close()
	c.fail(fmt.Errorf("client closed"))
	return err
}

var _ Client = (*WebSocketClient)(nil)
