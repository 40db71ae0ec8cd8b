package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/switchboard/pkg/device"
)

const (
	// DefaultPath is the push endpoint on the backend host.
	DefaultPath = "/ws"

	writeWait   = 10 * time.Second
	sendBacklog = 16
)

// Channel implements device.Channel over a single WebSocket connection.
// There is no reconnection: once the socket drops it stays down until
// the next Connect after Disconnect.
type Channel struct {
	url    string
	dialer *websocket.Dialer

	handlerMu sync.RWMutex
	handler   func()

	mu      sync.Mutex
	conn    *websocket.Conn
	send    chan device.Event
	done    chan struct{}
	wg      sync.WaitGroup
	closed  bool
	dialing bool
	aborted bool // Disconnect arrived while dialing
}

// Option configures a Channel.
type Option func(*Channel)

// WithHandshakeTimeout bounds the WebSocket opening handshake. Zero keeps
// the gorilla default.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.dialer.HandshakeTimeout = d
		}
	}
}

// New creates a Channel for the backend at base. path defaults to DefaultPath.
func New(base, path string, opts ...Option) (*Channel, error) {
	u, err := socketURL(base, path)
	if err != nil {
		return nil, err
	}
	dialer := *websocket.DefaultDialer
	c := &Channel{
		url:    u,
		dialer: &dialer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// socketURL maps http(s)://host[/prefix] to ws(s)://host[/prefix]/path.
func socketURL(base, path string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported base url scheme %q", u.Scheme)
	}
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u.Path += path
	return u.String(), nil
}

// URL returns the socket URL the channel dials.
func (c *Channel) URL() string {
	return c.url
}

// OnUpdate implements device.Channel.
func (c *Channel) OnUpdate(fn func()) {
	c.handlerMu.Lock()
	c.handler = fn
	c.handlerMu.Unlock()
}

// Connect implements device.Channel. The dial runs without holding the
// channel lock, so EmitUpdate and Disconnect never wait on the handshake.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.conn != nil || c.dialing {
		c.mu.Unlock()
		return device.ErrAlreadyConnected
	}
	c.dialing = true
	c.aborted = false
	c.mu.Unlock()

	conn, resp, err := c.dialer.DialContext(ctx, c.url, nil)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialing = false

	if err != nil {
		if resp != nil {
			return fmt.Errorf("%w: dial %s: %v (status %d)", device.ErrTransport, c.url, err, resp.StatusCode)
		}
		return fmt.Errorf("%w: dial %s: %v", device.ErrTransport, c.url, err)
	}
	if c.aborted {
		c.aborted = false
		_ = conn.Close()
		return fmt.Errorf("%w: disconnected while dialing", device.ErrNotConnected)
	}

	c.conn = conn
	c.send = make(chan device.Event, sendBacklog)
	c.done = make(chan struct{})
	c.closed = false

	c.wg.Add(2)
	go c.readLoop(conn, c.done)
	go c.writeLoop(conn, c.send, c.done)

	log.Info().Str("url", c.url).Msg("Push channel connected")
	return nil
}

// Disconnect implements device.Channel. A Connect still dialing gives up
// its connection once the handshake ends.
func (c *Channel) Disconnect() error {
	c.mu.Lock()
	if c.dialing {
		c.aborted = true
		c.mu.Unlock()
		return nil
	}
	conn := c.conn
	if conn == nil || c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	c.wg.Wait()

	c.mu.Lock()
	c.conn = nil
	c.send = nil
	c.mu.Unlock()

	log.Info().Str("url", c.url).Msg("Push channel disconnected")
	return nil
}

// EmitUpdate implements device.Channel. The frame is queued for the writer
// goroutine; it is dropped if the channel is down or the queue is full.
func (c *Channel) EmitUpdate(name string, status bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.closed {
		log.Warn().Str("device", name).Err(device.ErrNotConnected).Msg("Dropping push notification")
		return
	}

	select {
	case c.send <- device.NewSetDeviceEvent(name, status):
	default:
		log.Warn().Str("device", name).Msg("Push send queue full, dropping notification")
	}
}

func (c *Channel) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer c.wg.Done()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-done:
			default:
				log.Warn().Err(err).Msg("Push channel read failed, no further updates this session")
			}
			return
		}

		var evt device.Event
		if err := json.Unmarshal(data, &evt); err != nil {
			log.Debug().Err(err).Msg("Ignoring unparsable push frame")
			continue
		}
		if evt.Event != device.EventDeviceChanged {
			log.Debug().Str("event", evt.Event).Msg("Ignoring push event")
			continue
		}

		c.handlerMu.RLock()
		fn := c.handler
		c.handlerMu.RUnlock()
		if fn != nil {
			fn()
		}
	}
}

func (c *Channel) writeLoop(conn *websocket.Conn, send chan device.Event, done chan struct{}) {
	defer c.wg.Done()
	defer func() { _ = conn.Close() }()

	for {
		select {
		case <-done:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteMessage(websocket.CloseMessage, msg)
			return

		case evt := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(evt); err != nil {
				log.Warn().Err(err).Str("device", evt.Name).Msg("Failed to send push notification")
			}
		}
	}
}
