package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/udisondev/robotworld/internal/protocol"
)

const dialTimeout = 5 * time.Second

type options struct {
	addr string
	name string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "robotclient",
		Short: "Console client for the robot world server",
		Long: `Reads commands such as "launch sniper", "forward 3" or "turn left" from stdin,
sends them for the named robot and prints every response line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var d net.Dialer
			dctx, cancel := context.WithTimeout(ctx, dialTimeout)
			conn, err := d.DialContext(dctx, "tcp", opts.addr)
			cancel()
			if err != nil {
				return fmt.Errorf("connecting to %s: %w", opts.addr, err)
			}
			defer conn.Close()
			context.AfterFunc(ctx, func() { conn.Close() })

			return repl(newSession(conn, opts.name), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.addr, "addr", "a", "127.0.0.1:5000", "server address")
	f.StringVarP(&opts.name, "name", "n", "", "robot name")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// session is one connection speaking for one robot.
type session struct {
	conn  net.Conn
	lines *protocol.LineReader
	robot string
}

func newSession(conn net.Conn, robot string) *session {
	return &session{
		conn:  conn,
		lines: protocol.NewLineReader(conn, protocol.DefaultMaxLineBytes),
		robot: robot,
	}
}

// do sends one console line and returns the raw response line.
func (s *session) do(line string) ([]byte, error) {
	command, args := protocol.ParseCommandLine(line)
	req := protocol.Request{Robot: s.robot, Command: command, Arguments: args}
	if err := protocol.WriteJSON(s.conn, req); err != nil {
		return nil, fmt.Errorf("sending %s: %w", command, err)
	}
	resp, err := s.lines.ReadLine()
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return resp, nil
}

// repl forwards non-empty lines from in until EOF, quit, or a closed
// connection.
func repl(s *session, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		raw, err := s.do(line)
		if err != nil {
			if isClosed(err) {
				fmt.Fprintln(out, "connection closed")
				return nil
			}
			return err
		}
		fmt.Fprintln(out, string(raw))

		if cmd, _ := protocol.ParseCommandLine(line); cmd == "quit" {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	return nil
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET)
}
