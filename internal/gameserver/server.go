package gameserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/udisondev/robotworld/internal/config"
	"github.com/udisondev/robotworld/internal/protocol"
	"github.com/udisondev/robotworld/internal/world"
)

const defaultMaxConnections = 64

// Server accepts robot clients and runs one handler goroutine per
// connection, at most MaxConnections at a time.
type Server struct {
	cfg   config.Server
	world *world.World

	handler       *Handler
	clientManager *ClientManager
	slots         *semaphore.Weighted

	listener net.Listener
	mu       sync.Mutex
}

// NewServer creates a server for w.
func NewServer(cfg config.Server, w *world.World) *Server {
	maxConns := cfg.MaxConnections
	if maxConns <= 0 {
		maxConns = defaultMaxConnections
	}
	return &Server{
		cfg:           cfg,
		world:         w,
		handler:       NewHandler(w),
		clientManager: NewClientManager(),
		slots:         semaphore.NewWeighted(int64(maxConns)),
	}
}

// Addr returns the address the server is listening on.
// Returns nil if the server hasn't started yet.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// World returns the world this server hosts.
func (s *Server) World() *world.World {
	return s.world
}

// ClientManager returns the client manager for this server.
func (s *Server) ClientManager() *ClientManager {
	return s.clientManager
}

// Close stops accepting and drops every connection.
func (s *Server) Close() error {
	s.clientManager.CloseAll()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// Run listens on cfg.Addr() and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is cancelled, then waits
// for every handler to finish. Used directly by tests with custom listeners.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() {
		ln.Close()
	})
	defer stop()

	slog.Info("robot server started",
		"address", ln.Addr(),
		"world", s.world.Name())

	var wg sync.WaitGroup
	acceptLoop(ctx, &wg, s, ln)

	s.clientManager.CloseAll()
	wg.Wait()

	slog.Info("robot server stopped")
	return nil
}

func acceptLoop(ctx context.Context, wg *sync.WaitGroup, srv *Server, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Error("failed to accept new connection", "error", err)
			continue
		}

		// Enable TCP keepalive (detect dead connections)
		if tcpConn, ok := conn.(*net.TCPConn); ok {
			if err := tcpConn.SetKeepAlive(true); err != nil {
				slog.Warn("set keepalive failed", "error", err)
			}
			if err := tcpConn.SetKeepAlivePeriod(30 * time.Second); err != nil {
				slog.Warn("set keepalive period failed", "error", err)
			}
		}

		if !srv.slots.TryAcquire(1) {
			wg.Go(func() {
				rejectConnection(srv, conn)
			})
			continue
		}

		wg.Go(func() {
			defer srv.slots.Release(1)
			handleConnection(ctx, srv, conn)
		})
	}
}

func rejectConnection(srv *Server, conn net.Conn) {
	defer conn.Close()
	slog.Warn("connection rejected, server is full",
		"remote", conn.RemoteAddr(),
		"clients", srv.clientManager.Count())

	if err := conn.SetWriteDeadline(time.Now().Add(srv.writeTimeout())); err != nil {
		return
	}
	_ = protocol.WriteJSON(conn, protocol.Error(MsgServerFull))
}

func handleConnection(ctx context.Context, srv *Server, conn net.Conn) {
	client := NewClient(conn)
	srv.clientManager.Register(client)

	defer func() {
		srv.clientManager.Unregister(client.SessionID())
		OnDisconnection(srv.world, client)
		client.Close()
	}()

	stop := context.AfterFunc(ctx, func() {
		client.Close()
	})
	defer stop()

	slog.Info("new robot client connection",
		"remote", client.IP(),
		"session", client.SessionID())

	lr := protocol.NewLineReader(conn, srv.cfg.MaxLineBytes)
	readTimeout := srv.cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}

	for {
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			slog.Error("setting read deadline", "session", client.SessionID(), "error", err)
			return
		}

		line, err := lr.ReadLine()
		if errors.Is(err, protocol.ErrLineTooLong) {
			if err := client.Send(protocol.Error(MsgLineTooLong), srv.writeTimeout()); err != nil {
				return
			}
			continue
		}
		if err != nil {
			logReadError(ctx, client, err)
			return
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		resp, keepOpen := srv.handler.Handle(client, line)
		if err := client.Send(resp, srv.writeTimeout()); err != nil {
			slog.Warn("writing response",
				"session", client.SessionID(),
				"error", err)
			return
		}
		if !keepOpen {
			slog.Info("client quit", "session", client.SessionID())
			return
		}
	}
}

func logReadError(ctx context.Context, client *Client, err error) {
	switch {
	case errors.Is(err, io.EOF):
		slog.Info("client disconnected", "session", client.SessionID(), "client", client.IP())
	case ctx.Err() != nil, errors.Is(err, net.ErrClosed):
		slog.Debug("connection closed by server", "session", client.SessionID())
	case errors.Is(err, os.ErrDeadlineExceeded):
		slog.Info("idle client timed out", "session", client.SessionID())
	default:
		slog.Error("reading request", "session", client.SessionID(), "error", err)
	}
}

func (s *Server) writeTimeout() time.Duration {
	if s.cfg.WriteTimeout > 0 {
		return s.cfg.WriteTimeout
	}
	return defaultWriteTimeout
}
