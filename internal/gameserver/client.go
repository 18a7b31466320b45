package gameserver

import (
	"fmt"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/robotworld/internal/model"
	"github.com/udisondev/robotworld/internal/protocol"
)

// Default timeouts, overridden by config values when set.
const (
	defaultWriteTimeout = 5 * time.Second
	defaultReadTimeout  = 10 * time.Minute
)

// Client is one TCP connection and the robots it launched.
type Client struct {
	conn      net.Conn
	ip        string
	sessionID string

	writeMu sync.Mutex

	// mu guards robots
	mu     sync.Mutex
	robots []*model.Robot

	closeOnce sync.Once
}

// NewClient wraps conn with a fresh session id.
func NewClient(conn net.Conn) *Client {
	ip := conn.RemoteAddr().String()
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return &Client{
		conn:      conn,
		ip:        ip,
		sessionID: uuid.NewString(),
	}
}

// Conn returns the underlying network connection.
func (c *Client) Conn() net.Conn {
	return c.conn
}

// IP returns the client's remote IP address.
func (c *Client) IP() string {
	return c.ip
}

// SessionID identifies the connection in logs.
func (c *Client) SessionID() string {
	return c.sessionID
}

// TrackRobot records a robot launched over this connection.
func (c *Client) TrackRobot(r *model.Robot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.robots = append(c.robots, r)
}

// Robots returns every robot this connection launched, including ones
// that have since died or left the world.
func (c *Client) Robots() []*model.Robot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.robots)
}

// takeRobots empties the launched list and returns it.
func (c *Client) takeRobots() []*model.Robot {
	c.mu.Lock()
	defer c.mu.Unlock()
	robots := c.robots
	c.robots = nil
	return robots
}

// Send writes one response line, bounded by timeout.
func (c *Client) Send(resp protocol.Response, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("setting write deadline: %w", err)
	}
	return protocol.WriteJSON(c.conn, resp)
}

// Close closes the connection. Safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}
