// Package startup binds the listener and runs the HTTP server on it.
package startup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// DefaultAddr is the loopback interface with an OS-assigned port.
const DefaultAddr = "127.0.0.1:0"

// Listen binds a TCP listener on addr.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	return ln, nil
}

// Port returns the port ln is bound to, or 0 for non-TCP listeners.
func Port(ln net.Listener) int {
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

// Options tune the http.Server. Zero timeouts mean none.
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Logger       *slog.Logger
}

// Server is a handle to a server running on its own goroutine.
type Server struct {
	srv    *http.Server
	ln     net.Listener
	logger *slog.Logger
	done   chan struct{}
	err    error
}

// Run starts serving handler on ln and returns immediately. The server owns
// ln from here on.
func Run(ln net.Listener, handler http.Handler, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		srv: &http.Server{
			Handler:      handler,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
			ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		ln:     ln,
		logger: logger.With("component", "http"),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		s.logger.Info("server started", "addr", ln.Addr().String())
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.err = err
			s.logger.Error("server failed", "error", err)
		}
	}()

	return s
}

// Addr is the bound address, e.g. 127.0.0.1:54321.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// URL is the base URL clients use to reach the server.
func (s *Server) URL() string {
	return "http://" + s.Addr()
}

// Done is closed once the server has stopped serving.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that stopped the server, or nil after a clean
// shutdown. Only meaningful once Done is closed.
func (s *Server) Err() error {
	<-s.done
	return s.err
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-s.done
	s.logger.Info("server stopped")
	return nil
}
