// Package debugger implements a JSON-RPC 2.0 debug server. Clients connect
// over TCP, messages are framed with Content-Length headers.
package debugger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/retroenv/retrochip8/internal/arch/chip8"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
	"github.com/sourcegraph/jsonrpc2"
)

// Target is the debugged interpreter. All methods are safe for concurrent use.
type Target interface {
	State(ctx context.Context) (chip8.State, error)
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Paused(ctx context.Context) (bool, error)
	Step(ctx context.Context, count int) (chip8.State, error)
	StepOver(ctx context.Context) (chip8.State, error)
	ReadMemory(ctx context.Context, address uint16, length int) ([]byte, error)
	Disassemble(ctx context.Context, address uint16, count int) ([]chip8.Decoded, error)
	SetBreakpoint(ctx context.Context, address uint16) ([]uint16, error)
	ClearBreakpoint(ctx context.Context, address uint16) ([]uint16, error)
	Reset(ctx context.Context) (chip8.State, error)
}

// Server accepts debugger connections.
type Server struct {
	logger  *log.Logger
	handler *handler

	listener net.Listener
	mu       sync.Mutex
	conns    set.Set[*jsonrpc2.Conn]
	closed   bool
}

// New returns a debug server for the target.
func New(logger *log.Logger, target Target) *Server {
	return &Server{
		logger: logger,
		handler: &handler{
			logger: logger,
			target: target,
		},
		conns: set.New[*jsonrpc2.Conn](),
	}
}

// Listen starts accepting connections on the address in the background.
func (s *Server) Listen(ctx context.Context, address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", address, err)
	}
	s.listener = listener
	s.logger.Info("Debugger listening", log.String("address", listener.Addr().String()))

	go s.accept(ctx)
	return nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *Server) accept(ctx context.Context) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.logger.Error("Accepting debugger connection failed", log.Err(err))
			}
			return
		}

		s.logger.Info("Debugger connected", log.String("remote", conn.RemoteAddr().String()))
		s.Serve(ctx, conn)
	}
}

// Serve handles JSON-RPC requests on the connection until it is closed.
// It returns the JSON-RPC connection without waiting.
func (s *Server) Serve(ctx context.Context, conn io.ReadWriteCloser) *jsonrpc2.Conn {
	rpcConn := jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(conn, jsonrpc2.VSCodeObjectCodec{}), s.handler)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = rpcConn.Close()
		return rpcConn
	}
	s.conns.Add(rpcConn)
	s.mu.Unlock()

	go func() {
		<-rpcConn.DisconnectNotify()
		s.mu.Lock()
		delete(s.conns, rpcConn)
		s.mu.Unlock()
		s.logger.Debug("Debugger connection closed")
	}()
	return rpcConn
}

// Close stops accepting connections and closes all open connections.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	conns := make([]*jsonrpc2.Conn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}

	if s.listener == nil {
		return nil
	}
	if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("closing debugger listener: %w", err)
	}
	return nil
}
