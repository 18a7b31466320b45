package testutil

import (
	"fmt"
	"math/rand/v2"
	"net"
	"testing"
	"time"

	"github.com/udisondev/robotworld/internal/protocol"
)

// RobotClient speaks the line protocol to a running server.
// One request is in flight at a time, matching the protocol.
type RobotClient struct {
	t       testing.TB
	conn    net.Conn
	lines   *protocol.LineReader
	timeout time.Duration
}

// NewRobotClient dials addr, retrying briefly while the listener comes up.
// The connection is closed by t.Cleanup.
func NewRobotClient(t testing.TB, addr string) (*RobotClient, error) {
	t.Helper()

	var conn net.Conn
	var err error
	for attempt := range 10 {
		conn, err = net.DialTimeout("tcp", addr, 5*time.Second)
		if err == nil {
			break
		}
		if attempt < 9 {
			base := time.Duration(20<<min(attempt, 6)) * time.Millisecond
			jitter := time.Duration(rand.IntN(int(base/2)+1)) * time.Millisecond
			time.Sleep(base + jitter)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("dial robot server: %w", err)
	}

	c := &RobotClient{
		t:       t,
		conn:    conn,
		lines:   protocol.NewLineReader(conn, 0),
		timeout: 5 * time.Second,
	}
	t.Cleanup(func() {
		_ = c.Close()
	})
	return c, nil
}

// MustRobotClient is NewRobotClient that fails the test on error.
func MustRobotClient(t testing.TB, addr string) *RobotClient {
	t.Helper()
	c, err := NewRobotClient(t, addr)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	return c
}

// Send writes req and reads the matching response.
func (c *RobotClient) Send(req protocol.Request) (protocol.Response, error) {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return protocol.Response{}, err
	}
	if err := protocol.WriteJSON(c.conn, req); err != nil {
		return protocol.Response{}, err
	}
	return c.ReadResponse()
}

// SendRaw writes one raw line and reads the response.
func (c *RobotClient) SendRaw(line string) (protocol.Response, error) {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return protocol.Response{}, err
	}
	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		return protocol.Response{}, fmt.Errorf("writing line: %w", err)
	}
	return c.ReadResponse()
}

// Do sends command for robot and fails the test on transport errors.
func (c *RobotClient) Do(robot, command string, args ...any) protocol.Response {
	c.t.Helper()
	resp, err := c.Send(protocol.Request{Robot: robot, Command: command, Arguments: args})
	if err != nil {
		c.t.Fatalf("%s %s: %v", robot, command, err)
	}
	return resp
}

// ReadResponse reads one response line.
func (c *RobotClient) ReadResponse() (protocol.Response, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return protocol.Response{}, err
	}
	line, err := c.lines.ReadLine()
	if err != nil {
		return protocol.Response{}, fmt.Errorf("reading response: %w", err)
	}
	return protocol.DecodeResponse(line)
}

// Close closes the connection.
func (c *RobotClient) Close() error {
	return c.conn.Close()
}
