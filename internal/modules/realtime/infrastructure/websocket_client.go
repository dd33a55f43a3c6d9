package infrastructure

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	readLimit      = 1 << 16
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	controlTimeout = 5 * time.Second
)

// wsConn is the subset of *websocket.Conn the client relies on. Narrowing the
// surface keeps the registry and dispatcher testable without real sockets.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	ReadMessage() (int, []byte, error)
	Close() error
}

// Client wraps one live WebSocket connection together with the identity it was
// opened for. One user may own any number of clients at once.
type Client struct {
	conn        wsConn
	userID      string
	role        string
	connectedAt time.Time
	sendTimeout time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

// NewClient builds a client around an upgraded connection. sendTimeout bounds
// every outbound write so one stuck peer cannot stall a fan-out.
func NewClient(conn wsConn, userID, role string, sendTimeout time.Duration) *Client {
	if sendTimeout <= 0 {
		sendTimeout = controlTimeout
	}
	return &Client{
		conn:        conn,
		userID:      userID,
		role:        role,
		connectedAt: time.Now().UTC(),
		sendTimeout: sendTimeout,
		closed:      make(chan struct{}),
	}
}

func (c *Client) UserID() string { return c.userID }

func (c *Client) Role() string { return c.role }

func (c *Client) ConnectedAt() time.Time { return c.connectedAt }

// Send writes one text frame under the per-send deadline. A timeout surfaces
// as a write error, which callers treat as a dead connection.
func (c *Client) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.sendTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close shuts the underlying connection down once; repeated calls are no-ops.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

// Run services the connection until the peer goes away: it answers pings for
// liveness and drains (and discards) any inbound frames, since clients have no
// protocol beyond connect/disconnect. onClose fires exactly once.
func (c *Client) Run(onClose func(*Client)) {
	go c.pingLoop()

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	defer func() {
		c.Close()
		if onClose != nil {
			onClose(c)
		}
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("websocket read ended", slog.String("userId", c.userID), slog.Any("error", err))
			}
			return
		}
	}
}

func (c *Client) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.closed:
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(controlTimeout)); err != nil {
				slog.Debug("websocket ping failed", slog.String("userId", c.userID), slog.Any("error", err))
				return
			}
		}
	}
}
